package services

import (
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chatlyhq/chatly/config"
	"github.com/chatlyhq/chatly/db"
	"github.com/chatlyhq/chatly/models"
)

type testEnv struct {
	gdb         *db.GormDB
	conf        *config.Config
	authRepo    db.AuthRepository
	convRepo    db.ConversationRepository
	messageRepo db.MessageRepository
	outboxRepo  db.OutboxRepository
	media       *fakeMediaService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("could not get sql.DB: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("could not migrate: %v", err)
	}

	gdb := &db.GormDB{DB: gormDB}
	return &testEnv{
		gdb:         gdb,
		conf:        &config.Config{DefaultAvatarURL: "/default-avatar.png"},
		authRepo:    db.NewAuthRepo(gdb),
		convRepo:    db.NewConversationRepo(gdb),
		messageRepo: db.NewMessageRepo(gdb),
		outboxRepo:  db.NewOutboxRepo(gdb),
		media:       &fakeMediaService{},
	}
}

func (e *testEnv) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@test.io", HashedPassword: "x"}
	if err := e.gdb.DB.Create(user).Error; err != nil {
		t.Fatalf("could not seed user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) conversationService() ConversationService {
	return NewConversationService(e.authRepo, e.convRepo, e.messageRepo, e.media, e.conf)
}

func (e *testEnv) messageService() MessageService {
	return NewMessageService(e.authRepo, e.convRepo, e.messageRepo, e.media, nil, e.conf)
}

// fakeMediaService records uploads without touching object storage. It never
// opens the file header, so tests can hand it bare struct literals.
type fakeMediaService struct {
	uploads []string
	fail    bool
}

func (f *fakeMediaService) UploadChatFile(fileHeader *multipart.FileHeader, category string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("storage unavailable")
	}
	path := fmt.Sprintf("messages/%ss/%s", category, fileHeader.Filename)
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeMediaService) UploadProfileImage(fileHeader *multipart.FileHeader) (string, error) {
	if f.fail {
		return "", fmt.Errorf("storage unavailable")
	}
	path := "profile_images/" + fileHeader.Filename
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeMediaService) FileURL(path string) string {
	return "https://cdn.test/" + path
}

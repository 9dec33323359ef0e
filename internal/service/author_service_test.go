package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brightsite/internal/db"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthorServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:author-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.BlogAuthor{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func TestAuthorService_ListOrdersByName(t *testing.T) {
	gdb := setupAuthorServiceTestDB(t)
	svc := NewAuthorService(gdb)

	authors := []db.BlogAuthor{
		{Name: "Zoe Park", SocialLinks: datatypes.JSONMap{"linkedin": "https://linkedin.com/in/zoepark"}},
		{Name: "Ben Ali"},
	}
	for i := range authors {
		if err := gdb.Create(&authors[i]).Error; err != nil {
			t.Fatalf("failed to seed author: %v", err)
		}
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("list authors: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(list))
	}
	if list[0].Name != "Ben Ali" {
		t.Fatalf("expected name ascending order, got %#v", list)
	}
	if list[1].SocialLinks["linkedin"] != "https://linkedin.com/in/zoepark" {
		t.Fatalf("expected social links map, got %#v", list[1].SocialLinks)
	}
	if list[0].SocialLinks == nil {
		t.Fatalf("expected empty map for author without links")
	}
}

func TestAuthorService_GetNotFound(t *testing.T) {
	gdb := setupAuthorServiceTestDB(t)
	svc := NewAuthorService(gdb)

	if _, err := svc.Get(42); !errors.Is(err, ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

package repository

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

func TestGetDBPrefersContextTransaction(t *testing.T) {
	// DryRun tells the two connections apart after the WithContext clone.
	root := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{}}
	tx := &gorm.DB{Config: &gorm.Config{DryRun: true}, Statement: &gorm.Statement{}}

	ctx := context.WithValue(context.Background(), txCtxKey{}, tx)
	if got := GetDB(ctx, root); !got.Config.DryRun {
		t.Error("GetDB ignored the transaction on the context")
	}
	if got := GetDB(context.Background(), root); got.Config.DryRun {
		t.Error("GetDB returned a transaction for a plain context")
	}
}

package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
)

type mockDocument struct {
	entity.Document
	CustomerName string `db:"customer_name" json:"customerName"`
	Lines        []int  `db:"-" json:"lines"`
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	expectedCols := []string{
		"id", "deletion_mark", "deleted_by", "deleted_reason", "deleted_at",
		"version", "number", "date", "branch_id", "created_by", "created_at",
		"customer_name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	now := time.Now().UTC()
	doc := mockDocument{
		Document: entity.Document{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				DeletedBy:    "admin",
				DeletedAt:    &now,
				Version:      5,
			},
			BranchID:  "main",
			CreatedBy: "cashier1",
		},
		CustomerName: "Walk-in",
		Lines:        []int{1, 2},
	}

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, "admin", m["deleted_by"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "main", m["branch_id"])
	assert.Equal(t, "cashier1", m["created_by"])
	assert.Equal(t, "Walk-in", m["customer_name"])

	// Fields tagged "-" never reach the row map.
	_, ok := m["-"]
	assert.False(t, ok)
}

package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsOverlapViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"exclusion constraint", &pgconn.PgError{Code: "23P01"}, true},
		{"unique constraint", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped exclusion constraint", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"}), true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOverlapViolation(tt.err); got != tt.want {
				t.Errorf("isOverlapViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

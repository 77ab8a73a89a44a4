package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, true},
		{StatusAssigned, StatusConfirmed, true},
		{StatusAssigned, StatusRejected, true},
		{StatusAssigned, StatusCanceled, true},
		{StatusAssigned, StatusPending, false},
		{StatusAssigned, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCanceled, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusConfirmed, StatusAssigned, false},
		{StatusRejected, StatusAssigned, false},
		{StatusRejected, StatusRejected, false},
		{StatusCanceled, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCompleted, StatusCanceled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
}

func TestStatus_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusConfirmed.IsValid())
	assert.False(t, Status("ARCHIVED").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestUser_BelongsTo(t *testing.T) {
	t.Parallel()

	company := "c1"
	u := &User{ID: "u1", CompanyID: &company}

	assert.True(t, u.BelongsTo("c1"))
	assert.False(t, u.BelongsTo("c2"))
	assert.False(t, u.BelongsTo(""))
	assert.False(t, (&User{ID: "sa"}).BelongsTo("c1"))
}

func TestUser_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Awa Diallo", (&User{Name: " Awa Diallo "}).DisplayName("fallback"))
	assert.Equal(t, "fallback", (&User{Name: "  "}).DisplayName("fallback"))

	var nilUser *User
	assert.Equal(t, "fallback", nilUser.DisplayName("fallback"))
}

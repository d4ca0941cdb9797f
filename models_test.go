package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/edustack/go-session"
)

func strPtr(s string) *string { return &s }

func TestProfileClone(t *testing.T) {
	var nilProfile *session.Profile
	assert.Nil(t, nilProfile.Clone())

	original := &session.Profile{
		ID:    uuid.New(),
		Name:  "Pat Doe",
		Email: "pat@example.com",
		Role:  session.RoleStudent,
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	clone.Name = "changed"
	assert.Equal(t, "Pat Doe", original.Name)
	assert.Equal(t, original.ID, clone.ID)
}

func TestProfileUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   session.ProfileUpdate
		wantErr bool
	}{
		{"empty patch is valid", session.ProfileUpdate{}, false},
		{"name only", session.ProfileUpdate{Name: strPtr("Morgan Lee")}, false},
		{"valid avatar url", session.ProfileUpdate{AvatarURL: strPtr("https://cdn.example.com/a.png")}, false},
		{"invalid avatar url", session.ProfileUpdate{AvatarURL: strPtr("not a url")}, true},
		{"empty name", session.ProfileUpdate{Name: strPtr("")}, true},
		{"bio within limit", session.ProfileUpdate{Bio: strPtr("Learning Go")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfileUpdateIsZero(t *testing.T) {
	assert.True(t, session.ProfileUpdate{}.IsZero())
	assert.False(t, session.ProfileUpdate{Name: strPtr("Morgan")}.IsZero())
	assert.False(t, session.ProfileUpdate{Bio: strPtr("")}.IsZero())
}

func TestProfileUpdateColumns(t *testing.T) {
	assert.Empty(t, session.ProfileUpdate{}.Columns())

	patch := session.ProfileUpdate{
		Name: strPtr("Morgan"),
		Bio:  strPtr("Learning Go"),
	}
	assert.Equal(t, []string{"name", "bio"}, patch.Columns())

	full := session.ProfileUpdate{
		Name:      strPtr("Morgan"),
		AvatarURL: strPtr("https://cdn.example.com/a.png"),
		Bio:       strPtr("Learning Go"),
	}
	assert.Equal(t, []string{"name", "avatar_url", "bio"}, full.Columns())
}

func TestProfileUpdateApplyTo(t *testing.T) {
	original := &session.Profile{
		ID:        uuid.New(),
		Name:      "Pat Doe",
		Email:     "pat@example.com",
		Role:      session.RoleTeacher,
		AvatarURL: "https://cdn.example.com/old.png",
		Bio:       "Old bio",
	}

	patch := session.ProfileUpdate{
		Name: strPtr("Morgan Lee"),
		Bio:  strPtr("New bio"),
	}

	merged := patch.ApplyTo(original)
	require.NotNil(t, merged)

	assert.Equal(t, "Morgan Lee", merged.Name)
	assert.Equal(t, "New bio", merged.Bio)
	// untouched fields carry over
	assert.Equal(t, "https://cdn.example.com/old.png", merged.AvatarURL)
	assert.Equal(t, session.RoleTeacher, merged.Role)
	assert.Equal(t, "pat@example.com", merged.Email)

	// the original is never mutated
	assert.Equal(t, "Pat Doe", original.Name)
	assert.Equal(t, "Old bio", original.Bio)

	assert.Nil(t, patch.ApplyTo(nil))
}

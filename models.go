package session

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the application-level user record. It shares its id with the
// provider identity it belongs to.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	Bio           string     `bun:"bio" json:"bio,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Clone returns a copy readers can hold without aliasing store state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Account is the credential record backing the local identity provider.
// Role and email are fixed here; profile edits never touch this table.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
// Role and email are not mutable through this path.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Validate will run validation rules
func (u ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Length(1, 200)),
		validation.Field(&u.AvatarURL, is.URL),
		validation.Field(&u.Bio, validation.Length(0, 2000)),
	)
}

// IsZero reports whether the patch carries no changes.
func (u ProfileUpdate) IsZero() bool {
	return u.Name == nil && u.AvatarURL == nil && u.Bio == nil
}

// Columns lists the profile columns this patch touches.
func (u ProfileUpdate) Columns() []string {
	cols := make([]string, 0, 3)
	if u.Name != nil {
		cols = append(cols, "name")
	}
	if u.AvatarURL != nil {
		cols = append(cols, "avatar_url")
	}
	if u.Bio != nil {
		cols = append(cols, "bio")
	}
	return cols
}

// ApplyTo merges the patch into a copy of the given profile. The original
// is never mutated.
func (u ProfileUpdate) ApplyTo(profile *Profile) *Profile {
	merged := profile.Clone()
	if merged == nil {
		return nil
	}
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.AvatarURL != nil {
		merged.AvatarURL = *u.AvatarURL
	}
	if u.Bio != nil {
		merged.Bio = *u.Bio
	}
	return merged
}

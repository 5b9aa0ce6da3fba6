package address

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

func TestScopeFor(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.Profile
		want     Scope
		wantPath string
	}{
		{
			name:     "admin reads everything",
			profile:  models.Profile{ID: "1", Role: models.RoleAdmin},
			want:     Scope{All: true},
			wantPath: "/address/all",
		},
		{
			name:     "user reads own addresses",
			profile:  models.Profile{ID: "u1", Role: models.RoleUser},
			want:     Scope{OwnerID: "u1"},
			wantPath: "/address/all/u1",
		},
		{
			name:     "unknown role is treated as non-admin",
			profile:  models.Profile{ID: "9", Role: "AUDITOR"},
			want:     Scope{OwnerID: "9"},
			wantPath: "/address/all/9",
		},
		{
			name:     "lowercase admin is not admin",
			profile:  models.Profile{ID: "5", Role: "admin"},
			want:     Scope{OwnerID: "5"},
			wantPath: "/address/all/5",
		},
		{
			name:     "owner id is escaped",
			profile:  models.Profile{ID: "a/b", Role: models.RoleUser},
			want:     Scope{OwnerID: "a/b"},
			wantPath: "/address/all/a%2Fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := ScopeFor(tt.profile)
			assert.Equal(t, tt.want, scope)
			assert.Equal(t, tt.wantPath, scope.Path())
		})
	}
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "all", Scope{All: true}.String())
	assert.Equal(t, "ownedBy(42)", Scope{OwnerID: "42"}.String())
}

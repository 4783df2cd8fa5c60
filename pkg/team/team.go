// Package team covers team-level operations: memberships and the team's
// annotation class registry.
package team

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/config"
)

// Team is one Darwin team a client can operate as.
type Team struct {
	Slug        string
	DatasetsDir string
	APIKey      string
	TeamID      *uint32
}

// FromConfig lifts a config team block into a Team.
func FromConfig(t config.Team) Team {
	return Team{Slug: t.Slug, DatasetsDir: t.DatasetsDir, APIKey: t.APIKey}
}

// Member is one user's membership of a team.
type Member struct {
	ID        uint32  `json:"id"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	TeamID    uint32  `json:"team_id"`
	UserID    uint32  `json:"user_id"`
}

func (m Member) String() string {
	email, first, last := "", "", ""
	if m.Email != nil {
		email = *m.Email
	}
	if m.FirstName != nil {
		first = *m.FirstName
	}
	if m.LastName != nil {
		last = *m.LastName
	}
	return fmt.Sprintf("{id-%d}%s %s (%s)", m.UserID, first, last, email)
}

// TypeCount pairs an annotation type with how many classes use it.
type TypeCount struct {
	Count uint32  `json:"count"`
	ID    *uint32 `json:"id"`
	Name  *string `json:"name"`
}

// AnnotationClasses is the team's class registry with per-type counts.
type AnnotationClasses struct {
	AnnotationClasses []annotation.Class `json:"annotation_classes"`
	TypeCounts        []TypeCount        `json:"type_counts"`
}

// ListMemberships returns the members of the team the client's API key
// belongs to.
func ListMemberships(ctx context.Context, c client.Methods) ([]Member, error) {
	resp, err := c.Get(ctx, "memberships")
	if err != nil {
		return nil, err
	}
	members, err := client.Decode[[]Member](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *members, nil
}

// ListAnnotationClasses returns the team's annotation class registry.
func (t *Team) ListAnnotationClasses(ctx context.Context, c client.Methods) (*AnnotationClasses, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("teams/%s/annotation_classes", t.Slug))
	if err != nil {
		return nil, err
	}
	return client.Decode[AnnotationClasses](resp, http.StatusOK)
}

// CreateAnnotationClass registers a new annotation class with the team.
func (t *Team) CreateAnnotationClass(ctx context.Context, c client.Methods, class *annotation.Class) (*annotation.Class, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("teams/%s/annotation_classes", t.Slug), class)
	if err != nil {
		return nil, err
	}
	return client.Decode[annotation.Class](resp, http.StatusOK)
}

type memberRole struct {
	Role string `json:"role"`
}

// SetMemberRole changes a team member's role.
func SetMemberRole(ctx context.Context, c client.Methods, membershipID uint32, role string) (*Member, error) {
	resp, err := c.Put(ctx, fmt.Sprintf("memberships/%d", membershipID), memberRole{Role: role})
	if err != nil {
		return nil, err
	}
	return client.Decode[Member](resp, http.StatusOK)
}

// FindMembers returns the members the predicate accepts.
func FindMembers(ctx context.Context, c client.Methods, keep func(*Member) bool) ([]Member, error) {
	members, err := ListMemberships(ctx, c)
	if err != nil {
		return nil, err
	}
	found := make([]Member, 0, len(members))
	for i := range members {
		if keep(&members[i]) {
			found = append(found, members[i])
		}
	}
	return found, nil
}

// FindMembersByEmail returns the members whose email contains the given
// substring.
func FindMembersByEmail(ctx context.Context, c client.Methods, email string) ([]Member, error) {
	return FindMembers(ctx, c, func(m *Member) bool {
		return m.Email != nil && strings.Contains(*m.Email, email)
	})
}

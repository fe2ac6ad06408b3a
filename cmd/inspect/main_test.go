package main

import (
	"bytes"
	"chat-core/domain"
	"chat-core/store"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_OnlySelectedTable(t *testing.T) {
	req := require.New(t)
	snap := store.Snapshot{
		Users: []domain.User{{ID: 1, FirstName: "Olive", LastName: "Owner", Handle: "oliveowner", Permission: domain.PermissionOwner}},
		Channels: []domain.Channel{{
			Container: domain.Container{ID: 1, Name: "general", Owners: domain.UserSet{1}, Members: domain.UserSet{1}},
			IsPublic:  true,
		}},
	}

	var out bytes.Buffer
	render(&out, snap, "users", false)
	req.Contains(out.String(), "USERS (1)")
	req.Contains(out.String(), "oliveowner")
	req.NotContains(out.String(), "general")

	out.Reset()
	render(&out, snap, "all", false)
	req.Contains(out.String(), "CHANNELS (1)")
	req.Contains(out.String(), "general")
	req.Contains(out.String(), "MESSAGES (0)")
}

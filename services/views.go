package services

import (
	"chat-core/domain"
	"chat-core/store"
	"time"

	"github.com/samber/lo"
)

// Clock returns the current time. Services never call time.Now directly.
type Clock func() time.Time

type AuthResult struct {
	Token  string        `json:"token"`
	UserID domain.UserID `json:"auth_user_id"`
}

type UserView struct {
	ID            domain.UserID `json:"u_id"`
	Email         string        `json:"email"`
	FirstName     string        `json:"name_first"`
	LastName      string        `json:"name_last"`
	Handle        string        `json:"handle_str"`
	ProfileImgURL string        `json:"profile_img_url"`
}

type ChannelSummary struct {
	ID   domain.ChannelID `json:"channel_id"`
	Name string           `json:"name"`
}

type ChannelDetails struct {
	Name     string     `json:"name"`
	IsPublic bool       `json:"is_public"`
	Owners   []UserView `json:"owner_members"`
	Members  []UserView `json:"all_members"`
}

type DmSummary struct {
	ID   domain.DmID `json:"dm_id"`
	Name string      `json:"name"`
}

type DmDetails struct {
	Name    string     `json:"name"`
	Members []UserView `json:"members"`
}

type StandupStatus struct {
	IsActive   bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

type UserStats struct {
	ChannelsJoined  int     `json:"num_channels_joined"`
	DmsJoined       int     `json:"num_dms_joined"`
	MessagesSent    int     `json:"num_messages_sent"`
	InvolvementRate float64 `json:"involvement_rate"`
	TimeStamp       int64   `json:"time_stamp"`
}

type WorkspaceStats struct {
	ChannelsExist   int     `json:"num_channels_exist"`
	DmsExist        int     `json:"num_dms_exist"`
	MessagesExist   int     `json:"num_messages_exist"`
	UtilizationRate float64 `json:"utilization_rate"`
	TimeStamp       int64   `json:"time_stamp"`
}

func toUserView(u *domain.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Handle:        u.Handle,
		ProfileImgURL: u.ProfileImgURL,
	}
}

// userViews resolves ids in order. Ids of removed users are skipped: member
// lists never hold them once removal completed.
func userViews(tx *store.Tx, ids domain.UserSet) []UserView {
	return lo.FilterMap(ids, func(id domain.UserID, _ int) (UserView, bool) {
		u, err := tx.User(id)
		if err != nil {
			return UserView{}, false
		}
		return toUserView(u), true
	})
}

// rate divides and caps the result at 1. An empty denominator gives 0.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return min(float64(num)/float64(den), 1)
}

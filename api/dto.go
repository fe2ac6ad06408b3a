package api

type idURI struct {
	ID int `uri:"id" binding:"min=0"`
}

type userURI struct {
	UserID int `uri:"uid" binding:"min=0"`
}

type pageQuery struct {
	Start int `form:"start"`
}

type searchQuery struct {
	Query string `form:"query"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"name_first"`
	LastName  string `json:"name_last"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	ResetCode   string `json:"reset_code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type nameRequest struct {
	FirstName string `json:"name_first"`
	LastName  string `json:"name_last"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type handleRequest struct {
	Handle string `json:"handle_str"`
}

type photoRequest struct {
	URL    string `json:"img_url" binding:"required,url"`
	XStart int    `json:"x_start"`
	YStart int    `json:"y_start"`
	XEnd   int    `json:"x_end"`
	YEnd   int    `json:"y_end"`
}

type createChannelRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

type userRequest struct {
	UserID int `json:"u_id"`
}

type createDmRequest struct {
	UserIDs []int `json:"u_ids"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type laterRequest struct {
	Message  string `json:"message"`
	TimeSent int64  `json:"time_sent" binding:"required"`
}

type reactRequest struct {
	ReactID int `json:"react_id" binding:"required"`
}

type shareRequest struct {
	Message   string `json:"message"`
	ChannelID int    `json:"channel_id" binding:"required"`
	DmID      int    `json:"dm_id" binding:"required"`
}

type standupStartRequest struct {
	Length int `json:"length"`
}

type permissionRequest struct {
	PermissionID int `json:"permission_id" binding:"required"`
}

package server

import "errors"

var (
	ErrServerClosed           = errors.New("server is closed")
	ErrServerAlreadyRunning   = errors.New("server is already running")
	ErrInvalidConfig          = errors.New("invalid server configuration")
	ErrHealthOverrideDisabled = errors.New("health override is disabled")
	ErrUnknownTeam            = errors.New("unknown team")
	ErrTeamNotLive            = errors.New("team is not live")
)

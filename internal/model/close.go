package model

// CloseCode is the status sent in a websocket close frame
type CloseCode int

const (
	CloseNormal          CloseCode = 1000
	CloseGoingAway       CloseCode = 1001 // server shutdown
	CloseKicked          CloseCode = 4001
	CloseBanned          CloseCode = 4003
	CloseRateLimited     CloseCode = 4008
	CloseSessionReplaced CloseCode = 4409
)

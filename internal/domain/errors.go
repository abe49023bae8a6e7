package domain

import "errors"

var (
	// ErrDuplicateName is returned when a join reuses a name already in the session.
	ErrDuplicateName = errors.New("name already taken")
	// ErrInsufficientPlayers is returned when a game is started with an empty lobby.
	ErrInsufficientPlayers = errors.New("need at least one player to start")
	// ErrRoundNotOpen is returned for submissions outside an open round.
	ErrRoundNotOpen = errors.New("round is not open")
	// ErrAlreadyAnswered is returned for a second submission in the same round.
	ErrAlreadyAnswered = errors.New("answer already recorded for this round")
	// ErrRoundAlreadyStarted is returned when a round is opened twice.
	ErrRoundAlreadyStarted = errors.New("round already started")
	// ErrAdvanceUnavailable is returned when there is no scored round to advance from.
	ErrAdvanceUnavailable = errors.New("no scored round to advance from")
	// ErrGameInProgress is returned when a join arrives while a round is open.
	ErrGameInProgress = errors.New("game already in progress")
	// ErrQuizLoadFailed indicates quiz content could not be loaded.
	ErrQuizLoadFailed = errors.New("failed to load quiz")
	// ErrQuizNotFound indicates the requested quiz does not exist in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInvalid indicates loaded quiz content that cannot be played.
	ErrQuizInvalid = errors.New("quiz content is invalid")
	// ErrSessionNotFound is returned when a PIN does not map to a live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned for actions against a torn-down session.
	ErrSessionClosed = errors.New("session closed")
)

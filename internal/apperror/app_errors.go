package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameNotFound      = errors.New("game not found")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidMark       = errors.New("invalid mark")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownGameMode   = errors.New("unknown game mode")

	// ErrInvalidBoard - mark counts break turn alternation, the caller is out of sync.
	ErrInvalidBoard = errors.New("invalid board")
	// ErrNoLegalMove - a move was requested for a board with nothing left to play.
	ErrNoLegalMove = errors.New("no legal move available")
	// ErrInvalidSuggestion - oracle suggestion is out of range or targets an occupied cell.
	ErrInvalidSuggestion = errors.New("invalid external suggestion")

	ErrReplayIndexOutOfRange = errors.New("replay index out of range")
	ErrHistoryDesync         = errors.New("move history does not match board")
)

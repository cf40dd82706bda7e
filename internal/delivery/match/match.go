package match

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"webgo/internal/bootstrap"
	"webgo/internal/bot"
	"webgo/internal/domain/game"
	apperrors "webgo/internal/errors"
	"webgo/internal/httpresponse"
	repo "webgo/internal/repository"
	matchuc "webgo/internal/usecase/match"
	"webgo/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type MatchHandler struct {
	cfg      bootstrap.Config
	log      *zap.SugaredLogger
	matchUC  *matchuc.MatchUseCase
	sessions *repo.RedisSessionStorage
	hub      *Hub
}

func NewMatchHandler(cfg bootstrap.Config, log *zap.SugaredLogger, matchUC *matchuc.MatchUseCase, sessions *repo.RedisSessionStorage, hub *Hub) *MatchHandler {
	return &MatchHandler{
		cfg:      cfg,
		log:      log,
		matchUC:  matchUC,
		sessions: sessions,
		hub:      hub,
	}
}

// userID resolves the caller from the sessionID cookie. On failure it writes
// the error response and returns "".
func (m *MatchHandler) userID(w http.ResponseWriter, r *http.Request) string {
	sessionCookie, err := r.Cookie("sessionID")
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			httpresponse.WriteErrorResponse(w, http.StatusUnauthorized, "sessionID cookie is missing")
			return ""
		}
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return ""
	}

	userID, err := m.sessions.GetUserIDBySession(r.Context(), sessionCookie.Value)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			httpresponse.WriteErrorResponse(w, http.StatusUnauthorized, "session not found or expired")
			return ""
		}
		m.log.Error("session lookup error: ", err)
		httpresponse.WriteInternalErrorResponse(w)
		return ""
	}
	return userID
}

func validBoardSize(size int) bool {
	return size == 9 || size == 13 || size == 19
}

type botMatchRequest struct {
	game.CreateMatchRequest
	Difficulty string `json:"difficulty"`
}

func (m *MatchHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID := m.userID(w, r)
	if userID == "" {
		return
	}

	var req game.CreateMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		m.log.Error("create game: JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MalformedJSONErrorDesc)
		return
	}
	if !validBoardSize(req.BoardSize) {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "board_size must be 9, 13 or 19")
		return
	}

	created, err := m.matchUC.CreateMatch(r.Context(), userID, req)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MatchCreateResponse{
		ID:             created.ID,
		InvitationCode: created.InvitationCode,
	})
}

func (m *MatchHandler) HandleCreateBotGame(w http.ResponseWriter, r *http.Request) {
	userID := m.userID(w, r)
	if userID == "" {
		return
	}

	var req botMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		m.log.Error("create bot game: JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MalformedJSONErrorDesc)
		return
	}
	if !validBoardSize(req.BoardSize) {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "board_size must be 9, 13 or 19")
		return
	}

	difficulty := bot.Difficulty(req.Difficulty)
	switch difficulty {
	case bot.DifficultyEasy, bot.DifficultyMedium, bot.DifficultyHard:
	default:
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}

	created, err := m.matchUC.CreateBotMatch(r.Context(), userID, difficulty, req.CreateMatchRequest)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, created)
}

func (m *MatchHandler) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	userID := m.userID(w, r)
	if userID == "" {
		return
	}

	var req game.JoinMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		m.log.Error("join game: JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MalformedJSONErrorDesc)
		return
	}
	if req.InvitationCode == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "invitation_code is required")
		return
	}

	joined, err := m.matchUC.JoinMatch(r.Context(), req.InvitationCode, userID)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, joined)
}

func (m *MatchHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	if m.userID(w, r) == "" {
		return
	}

	matchID := chi.URLParam(r, "id")
	found, err := m.matchUC.GetMatch(r.Context(), matchID)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, found)
}

func (m *MatchHandler) HandleListMoves(w http.ResponseWriter, r *http.Request) {
	if m.userID(w, r) == "" {
		return
	}

	matchID := chi.URLParam(r, "id")
	moves, err := m.matchUC.GetMoves(r.Context(), matchID)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, moves)
}

func (m *MatchHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	userID := m.userID(w, r)
	if userID == "" {
		return
	}

	matches, err := m.matchUC.GetMatchesByUserID(r.Context(), userID)
	if err != nil {
		m.writeError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, matches)
}

func (m *MatchHandler) writeError(w http.ResponseWriter, err error) {
	var moveErr *matchuc.MoveError
	if errors.As(err, &moveErr) {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, moveErr.Error())
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrGameNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		httpresponse.WriteErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrNotParticipant), errors.Is(err, apperrors.ErrNotYourTurn):
		httpresponse.WriteErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrConcurrentUpdate):
		httpresponse.WriteErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrGameNotJoinable),
		errors.Is(err, apperrors.ErrGameFull),
		errors.Is(err, apperrors.ErrGameNotActive),
		errors.Is(err, apperrors.ErrNotInScoring),
		errors.Is(err, apperrors.ErrMarkOutOfBounds),
		errors.Is(err, apperrors.ErrMarkEmptyPoint),
		errors.Is(err, apperrors.ErrCannotResign):
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		m.log.Error("unhandled error: ", err)
		httpresponse.WriteInternalErrorResponse(w)
	}
}

// inboundCommand is a player action received over the match socket.
type inboundCommand struct {
	Action    string          `json:"action"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Positions []game.Position `json:"positions,omitempty"`
}

// HandleGameSocket upgrades the connection and joins the caller to the
// match room. Inbound frames carry player actions; every committed state
// change comes back through the hub broadcast.
func (m *MatchHandler) HandleGameSocket(w http.ResponseWriter, r *http.Request) {
	userID := m.userID(w, r)
	if userID == "" {
		return
	}

	matchID := chi.URLParam(r, "id")
	current, err := m.matchUC.GetMatch(r.Context(), matchID)
	if err != nil {
		m.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Error("websocket upgrade error: ", err)
		return
	}

	c := newClient(conn)
	m.hub.register(matchID, c)
	go c.writePump()

	defer func() {
		m.hub.unregister(matchID, c)
		c.close()
	}()

	// Late joiners need the full picture before incremental events.
	c.sendEvent("game_state", current)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd inboundCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.Infow("websocket closed", "match_id", matchID, "user", userID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		m.dispatch(r.Context(), matchID, userID, cmd, c)
	}
}

func (m *MatchHandler) dispatch(ctx context.Context, matchID, userID string, cmd inboundCommand, c *client) {
	var err error
	switch cmd.Action {
	case "make_move":
		_, err = m.matchUC.MakeMove(ctx, matchID, userID, game.Position{X: cmd.X, Y: cmd.Y})
	case "pass_turn":
		_, err = m.matchUC.PassTurn(ctx, matchID, userID)
	case "mark_dead_stones":
		_, err = m.matchUC.MarkDeadStones(ctx, matchID, userID, cmd.Positions)
	case "accept_score":
		_, _, err = m.matchUC.AcceptScore(ctx, matchID, userID)
	case "resign":
		_, err = m.matchUC.Resign(ctx, matchID, userID)
	default:
		c.sendEvent("error", map[string]string{"description": "unknown action: " + cmd.Action})
		return
	}

	if err == nil {
		return
	}

	var moveErr *matchuc.MoveError
	if errors.As(err, &moveErr) {
		c.sendEvent("invalid_move", map[string]string{"reason": string(moveErr.Reason)})
		return
	}
	c.sendEvent("error", map[string]string{"description": err.Error()})
}

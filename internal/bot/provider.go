package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webgo/internal/domain/game"
	"webgo/internal/errors"
)

// MoveProvider is an optional external strength engine. A nil position with a
// nil error means the engine recommends passing.
type MoveProvider interface {
	Name() string
	SelectMove(ctx context.Context, board game.BoardState) (*game.Position, error)
}

// KatagoProvider talks to a KataGo analysis HTTP endpoint.
type KatagoProvider struct {
	apiURL string
	apiKey string
	client *http.Client
	log    *zap.SugaredLogger
}

func NewKatagoProvider(apiURL, apiKey string, log *zap.SugaredLogger) *KatagoProvider {
	return &KatagoProvider{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{},
		log:    log,
	}
}

func (p *KatagoProvider) Name() string { return "katago" }

type katagoRequest struct {
	ID            string          `json:"id"`
	InitialStones [][]interface{} `json:"initialStones"`
	Moves         [][]interface{} `json:"moves"`
	Rules         string          `json:"rules"`
	Komi          float64         `json:"komi"`
	BoardXSize    int             `json:"boardXSize"`
	BoardYSize    int             `json:"boardYSize"`
	AnalyzeTurns  []int           `json:"analyzeTurns"`
	MaxVisits     int             `json:"maxVisits"`
}

type katagoMoveInfo struct {
	Move    string  `json:"move"`
	Visits  int     `json:"visits"`
	Winrate float64 `json:"winrate"`
	Order   int     `json:"order"`
}

type katagoResponse struct {
	ID        string           `json:"id"`
	Move      string           `json:"move"`
	MoveInfos []katagoMoveInfo `json:"moveInfos"`
}

func (p *KatagoProvider) SelectMove(ctx context.Context, board game.BoardState) (*game.Position, error) {
	reqBody := katagoRequest{
		ID:           "webgo-" + uuid.New().String(),
		Rules:        "chinese",
		Komi:         7.5,
		BoardXSize:   board.Size,
		BoardYSize:   board.Size,
		AnalyzeTurns: []int{0},
		MaxVisits:    100,
		Moves:        [][]interface{}{},
	}
	for key, color := range board.Stones {
		pos, err := game.ParseKey(key)
		if err != nil {
			continue
		}
		label := "B"
		if color == game.White {
			label = "W"
		}
		reqBody.InitialStones = append(reqBody.InitialStones, []interface{}{label, []int{pos.X, pos.Y}})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("katago api status %d", resp.StatusCode)
	}

	var data katagoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	switch {
	case data.Move != "":
		return ParseGTPCoordinate(data.Move, board.Size)
	case len(data.MoveInfos) > 0:
		return ParseGTPCoordinate(data.MoveInfos[0].Move, board.Size)
	}
	return nil, errors.ErrProviderNoMove
}

// ParseGTPCoordinate converts a GTP coordinate like "D4" or "Q16" to a board
// position. GTP columns skip the letter I; "pass" and "resign" map to nil.
func ParseGTPCoordinate(coord string, boardSize int) (*game.Position, error) {
	coord = strings.TrimSpace(strings.ToUpper(coord))
	if coord == "" || coord == "PASS" || coord == "RESIGN" {
		return nil, nil
	}

	col := coord[0]
	if col < 'A' || col > 'Z' || col == 'I' {
		return nil, fmt.Errorf("malformed gtp coordinate %q", coord)
	}
	x := int(col - 'A')
	if col > 'I' {
		x--
	}

	row, err := strconv.Atoi(coord[1:])
	if err != nil {
		return nil, fmt.Errorf("malformed gtp coordinate %q", coord)
	}
	y := boardSize - row

	pos := game.Position{X: x, Y: y}
	if x < 0 || x >= boardSize || y < 0 || y >= boardSize {
		return nil, fmt.Errorf("gtp coordinate %q outside %dx%d board", coord, boardSize, boardSize)
	}
	return &pos, nil
}

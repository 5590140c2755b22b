package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TileDegrees      float64    `json:"tile_degrees"`
	NeighborhoodSize int        `json:"neighborhood_size"`
	Origin           [2]float64 `json:"origin"`
	MaxTokens        int        `json:"max_tokens"`
}

// Ops carried by ACT.
const (
	OpMove    = "MOVE"
	OpCell    = "CELL"
	OpCollect = "COLLECT"
	OpDeposit = "DEPOSIT"
	OpReset   = "RESET"
	OpSave    = "SAVE"
	OpState   = "STATE"
)

// ACT (client -> server)
type ActMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Seq             uint64      `json:"seq"`
	Op              string      `json:"op"`
	Point           *[2]float64 `json:"point,omitempty"`
	Cell            *[2]int     `json:"cell,omitempty"`
	TokenID         string      `json:"token_id,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Seq             uint64     `json:"seq"`
	Op              string     `json:"op"`
	OK              bool       `json:"ok"`
	Code            string     `json:"code,omitempty"`
	Message         string     `json:"message,omitempty"`
	Player          [2]float64 `json:"player"`
	PlayerCell      [2]int     `json:"player_cell"`
	Cells           []CellView `json:"cells,omitempty"`
	Carried         []string   `json:"carried"`
	Points          int        `json:"points"`
	Token           string     `json:"token,omitempty"`
}

type CellView struct {
	Cell   [2]int        `json:"cell"`
	Bounds [2][2]float64 `json:"bounds"`
	Tokens []string      `json:"tokens"`
}

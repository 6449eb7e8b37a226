package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ObserverName    string            `json:"observer_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
	// MaxCells caps the per-frame cell payload; frames with more tracked
	// cells arrive with cells_omitted set instead.
	MaxCells int `json:"max_cells,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	WorldID         string         `json:"world_id"`
	Tick            uint64         `json:"tick"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	ChunkSize  int   `json:"chunk_size"`
	Height     int   `json:"height"`
	Seed       int64 `json:"seed"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
	DefsDigest   string    `json:"defs_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// ACT (client -> server): place a named block at a position.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Action          string `json:"action"` // "SET_BLOCK"
	Pos             [3]int `json:"pos"`
	Block           string `json:"block"`
}

const ActSetBlock = "SET_BLOCK"

// FRAME (server -> client): per-tick water state.
type FrameMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick"`
	Steps           int        `json:"steps"`
	Processed       int        `json:"processed"`
	Discarded       int        `json:"discarded"`
	Tracked         int        `json:"tracked"`
	Pending         int        `json:"pending"`
	Cells           []CellWire `json:"cells,omitempty"`
	CellsOmitted    bool       `json:"cells_omitted,omitempty"`
	Drops           []DropWire `json:"drops,omitempty"`
}

type CellWire struct {
	Pos     [3]int `json:"pos"`
	Level   uint8  `json:"level"`
	Falling bool   `json:"falling,omitempty"`
	Source  bool   `json:"source,omitempty"`
}

type DropWire struct {
	ID   string `json:"id"`
	Pos  [3]int `json:"pos"`
	Item string `json:"item"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

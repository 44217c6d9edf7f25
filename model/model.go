package model

import (
	"encoding/json"
	"time"
)

// Msg is the websocket envelope in both directions.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// client → server
const (
	TypeRun  = "run"
	TypeStop = "stop"
)

// server → client
const (
	TypeProgress = "progress"
	TypeStatus   = "status"
	TypeDebug    = "debug"
	TypeResult   = "result"
	TypeError    = "error"
	TypeStopped  = "stopped"
)

// Edge of a run request, zero values keep the configured condition.
type Edge struct {
	Kind string  `json:"kind"`
	T    float64 `json:"t,omitempty"`
	H    float64 `json:"h,omitempty"`
	TInf float64 `json:"t_inf,omitempty"`
}

// RunRequest is the optional content of a run message.
type RunRequest struct {
	Tolerance     float64         `json:"tolerance,omitempty"`
	MaxIterations int             `json:"max_iterations,omitempty"`
	Boundary      map[string]Edge `json:"boundary,omitempty"` // keyed north/south/east/west
	Layout        json.RawMessage `json:"layout,omitempty"`  // geometry layout document
}

// 节点结果
type NodeRecord struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Material string  `json:"material"`
	Code     int     `json:"code"`
	Phi      float64 `json:"phi"`
}

// Summary of a finished run.
type Summary struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	Nodes         int           `json:"nodes"`
	Layers        int           `json:"layers"`
	BoundaryNodes int           `json:"boundary_nodes"`
	Iterations    int           `json:"iterations"`
	MaxChange     float64       `json:"max_change"`
	Converged     bool          `json:"converged"`
	Violations    int           `json:"violations"`
	Min           float64       `json:"min"`
	Max           float64       `json:"max"`
	Mean          float64       `json:"mean"`
	Elapsed       time.Duration `json:"elapsed"`
	Error         string        `json:"error,omitempty"`
}

// Run is what the store keeps per run.
type Run struct {
	Summary Summary      `json:"summary"`
	Nodes   []NodeRecord `json:"nodes"`
}

// Result is the content of a result message. Field is the delta encoded
// temperature field in node order, see export.Encode.
type Result struct {
	Summary Summary      `json:"summary"`
	Field   EncodedField `json:"field"`
}

// EncodedField holds temperatures quantized to Scale steps per kelvin.
type EncodedField struct {
	Scale int     `json:"scale"`
	Start int     `json:"start"`
	Data  []int32 `json:"data"`
}

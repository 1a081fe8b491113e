package server

import (
	"encoding/json"

	"nuprlnav/internal/source"
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type initializeParams struct {
	RootURI          string            `json:"rootUri,omitempty"`
	RootPath         string            `json:"rootPath,omitempty"`
	WorkspaceFolders []workspaceFolder `json:"workspaceFolders,omitempty"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ServerInfo serverInfo `json:"serverInfo"`
}

// position is zero-based on the wire. Negative values clamp to zero.
type position struct {
	Line int64 `json:"line"`
	Col  int64 `json:"col"`
}

func (p position) source() source.Position {
	return source.Position{Line: source.Clamp(p.Line), Col: source.Clamp(p.Col)}
}

func fromSource(p source.Position) position {
	return position{Line: int64(p.Line), Col: int64(p.Col)}
}

type wireRange struct {
	Start position `json:"start"`
	End   position `json:"end"`
}

func rangeOf(sp source.Span) wireRange {
	return wireRange{Start: fromSource(sp.Start), End: fromSource(sp.End)}
}

type didOpenParams struct {
	URI      string    `json:"uri"`
	Text     string    `json:"text"`
	Version  int32     `json:"version"`
	Position *position `json:"position,omitempty"`
}

type didChangeParams struct {
	URI     string `json:"uri"`
	Text    string `json:"text"`
	Version int32  `json:"version"`
}

type didSaveParams struct {
	URI  string  `json:"uri"`
	Text *string `json:"text,omitempty"`
}

type selectionParams struct {
	URI      string   `json:"uri"`
	Position position `json:"position"`
}

type reduceParams struct {
	Expr     string `json:"expr"`
	MaxSteps *int   `json:"maxSteps"`
}

type jumpParams struct {
	ObjID  *int64 `json:"objId"`
	NodeID *int64 `json:"nodeId"`
}

type uriParams struct {
	URI string `json:"uri"`
}

type holeItem struct {
	Range wireRange `json:"range"`
}

type highlightParams struct {
	URI   string     `json:"uri"`
	Range *wireRange `json:"range"`
}

type revealParams struct {
	URI      string   `json:"uri"`
	Position position `json:"position"`
}

type reducedParams struct {
	Original *string `json:"original"`
	Reduced  *string `json:"reduced"`
}

type messageParams struct {
	Message string `json:"message"`
}

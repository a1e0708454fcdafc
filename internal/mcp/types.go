package mcp

// ListNodesInput is the input for the list_nodes tool.
type ListNodesInput struct {
	Path string `json:"path,omitempty" jsonschema:"Directory to list (default: /)"`
}

// NodeEntry describes one child of a listed directory.
type NodeEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Dir  bool   `json:"dir"`
	Kind string `json:"kind,omitempty"`
}

// ListNodesOutput is the output for the list_nodes tool.
type ListNodesOutput struct {
	Path    string      `json:"path"`
	Entries []NodeEntry `json:"entries"`
}

// ReadNodeInput is the input for the read_node tool.
type ReadNodeInput struct {
	Path string `json:"path" jsonschema:"Absolute node path, e.g. /sel or /client/3/name"`
}

// ReadNodeOutput is the output for the read_node tool.
type ReadNodeOutput struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// WriteNodeInput is the input for the write_node tool.
type WriteNodeInput struct {
	Path string `json:"path" jsonschema:"Absolute path of a ctl or setting node, e.g. /ctl or /frame/2/ctl"`
	Data string `json:"data" jsonschema:"Command line or setting value, e.g. 'select next' or 'resize 0 0 400 300'"`
}

// WriteNodeOutput is the output for the write_node tool.
type WriteNodeOutput struct {
	Path     string `json:"path"`
	Accepted bool   `json:"accepted"`
	Sel      string `json:"sel,omitempty"`
}

// GetTreeInput is the input for the get_tree tool.
type GetTreeInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"Only return nodes under this path (default: /)"`
}

// GetTreeOutput is the output for the get_tree tool.
type GetTreeOutput struct {
	Nodes []ReadNodeOutput `json:"nodes"`
}

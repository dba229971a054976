package errors

import (
	"maps"
	"slices"
	"sync"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var (
	registryMu sync.RWMutex

	// registry maps error codes to their templates.
	registry = map[string]ErrorTemplate{
		// Component tree (T001-T009)
		"T001": {
			Category:   CategoryComponent,
			Message:    "Container full",
			Detail:     "The container already holds as many children as it can place.",
			Suggestion: "Remove or replace a child first, or use a container without a limit.",
		},
		"T002": {
			Category: CategoryComponent,
			Message:  "Containment cycle",
			Detail:   "A container cannot be added to itself or to one of its descendants.",
		},
		"T003": {
			Category: CategoryComponent,
			Message:  "Not a child",
			Detail:   "The component is not a direct child of this container.",
		},
		"T004": {
			Category: CategoryComponent,
			Message:  "Nil component",
		},

		// Window (T010-T019)
		"T010": {
			Category: CategoryWindow,
			Message:  "Stale component reference",
			Detail:   "The client addressed a component that is no longer part of the window. The change was ignored.",
		},
		"T011": {
			Category: CategoryWindow,
			Message:  "Variable rejected",
			Detail:   "A component refused a value sent by the client.",
		},

		// Protocol (T020-T039)
		"T020": {
			Category: CategoryProtocol,
			Message:  "Invalid frame",
			Detail:   "The frame header is malformed or its payload could not be decompressed.",
		},
		"T021": {
			Category: CategoryProtocol,
			Message:  "Invalid payload",
			Detail:   "The frame payload does not decode with the negotiated codec.",
		},
		"T022": {
			Category:   CategoryProtocol,
			Message:    "Unexpected frame",
			Detail:     "The frame type is not valid in the current session state.",
			Suggestion: "Send a Hello frame before any other frame.",
		},
		"T023": {
			Category:   CategoryProtocol,
			Message:    "Unsupported codec",
			Suggestion: `Use "binary" or "cbor".`,
		},
		"T024": {
			Category: CategoryProtocol,
			Message:  "Protocol version mismatch",
			Detail:   "Client and server speak different major protocol versions.",
		},
		"T025": {
			Category:   CategoryProtocol,
			Message:    "Frame too large",
			Suggestion: "Raise server.max_message_size or split the batch.",
		},

		// Session (T040-T059)
		"T040": {
			Category: CategorySession,
			Message:  "Session closed",
		},
		"T041": {
			Category: CategorySession,
			Message:  "Write failed",
			Detail:   "The frame could not be written to the connection.",
		},
		"T042": {
			Category: CategorySession,
			Message:  "WebSocket upgrade failed",
		},

		// Configuration (T060-T079)
		"T060": {
			Category:   CategoryConfig,
			Message:    "Configuration file not found",
			Suggestion: "Create tessera.yaml or tessera.json in the working directory, or pass --config.",
		},
		"T061": {
			Category: CategoryConfig,
			Message:  "Invalid configuration file",
			Detail:   "The configuration file could not be parsed.",
		},
		"T062": {
			Category:   CategoryConfig,
			Message:    "Invalid listen address",
			Suggestion: `Use host:port, for example ":8080".`,
		},
		"T063": {
			Category: CategoryConfig,
			Message:  "Invalid timeout",
			Detail:   "Timeouts must be positive durations.",
		},
		"T064": {
			Category: CategoryConfig,
			Message:  "Invalid message size",
			Detail:   "The maximum message size must be positive and at most 16MB.",
		},
		"T065": {
			Category:   CategoryConfig,
			Message:    "Unknown codec",
			Suggestion: `Use "binary" or "cbor".`,
		},
		"T066": {
			Category: CategoryConfig,
			Message:  "Invalid resource backend",
			Detail:   "The backend must be memory, dir or s3, with the fields that backend needs.",
		},
		"T067": {
			Category: CategoryConfig,
			Message:  "Invalid path",
			Detail:   "HTTP paths must start with a slash and must not collide.",
		},
		"T068": {
			Category:   CategoryConfig,
			Message:    "Invalid log setting",
			Suggestion: `Levels are debug, info, warn and error; formats are "text" and "json".`,
		},

		// Resources (T080-T099)
		"T080": {
			Category: CategoryResource,
			Message:  "Resource not found",
		},
		"T081": {
			Category: CategoryResource,
			Message:  "Malformed resource reference",
			Detail:   `References have the form "res/<source>/<name>".`,
		},
		"T082": {
			Category: CategoryResource,
			Message:  "Resource backend failed",
		},

		// CLI (T100-T119)
		"T100": {
			Category: CategoryCLI,
			Message:  "Invalid arguments",
		},
		"T101": {
			Category: CategoryCLI,
			Message:  "Cannot read frame file",
		},
	}
)

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = template
}

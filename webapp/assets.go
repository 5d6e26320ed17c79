//go:build !wasm

package webapp

import _ "embed"

// Stylesheet is webapp.css, served by the binaries that host the UI
//
//go:embed webapp.css
var Stylesheet []byte

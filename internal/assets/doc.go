// Package assets provides the stylesheets and font faces embedded in every
// rendered document.
//
// Stylesheets are compiled into the binary. Font faces are optional and are
// read from a configured directory, then inlined as data URIs so documents
// never reach the network for typography.
//
// # Font Directory
//
// Font files are discovered by name:
//
//	{fontsDir}/
//	├── Inter-400.woff2          # family Inter, weight 400, normal
//	├── Inter-700.woff2          # family Inter, weight 700, normal
//	└── Inter-400-italic.woff2   # family Inter, weight 400, italic
//
// Supported extensions are .woff2, .woff, .ttf and .otf. Other files are
// ignored.
//
// # Security
//
// Asset names are validated to prevent path traversal. FontLoader resolves
// symlinks and verifies every file stays within its base directory.
package assets

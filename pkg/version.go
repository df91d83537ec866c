package moalif

// Version is the application version reported by the CLI and the MCP server.
const Version = "0.1.0"

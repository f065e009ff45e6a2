package model

// Config holds the user's configuration.
type Config struct {
	ServerURL             string  `json:"serverUrl" yaml:"serverUrl"`
	APIPrefix             string  `json:"apiPrefix" yaml:"apiPrefix"`
	OutPath               string  `json:"outPath" yaml:"outPath"`
	Platform              string  `json:"platform,omitempty" yaml:"platform,omitempty"`
	MaxAttempts           int     `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	AttemptTimeoutSeconds int     `json:"attemptTimeoutSeconds,omitempty" yaml:"attemptTimeoutSeconds,omitempty"`
	InterItemDelayMs      int     `json:"interItemDelayMs,omitempty" yaml:"interItemDelayMs,omitempty"`
	APILogPath            string  `json:"apiLogPath,omitempty" yaml:"apiLogPath,omitempty"`
	RateLimitPerSecond    float64 `json:"rateLimitPerSecond,omitempty" yaml:"rateLimitPerSecond,omitempty"`
	RateLimitBurst        int     `json:"rateLimitBurst,omitempty" yaml:"rateLimitBurst,omitempty"`
	CircuitThreshold      int     `json:"circuitThreshold,omitempty" yaml:"circuitThreshold,omitempty"`
	CircuitResetSeconds   int     `json:"circuitResetSeconds,omitempty" yaml:"circuitResetSeconds,omitempty"`
	GotifyURL             string  `json:"gotifyUrl,omitempty" yaml:"gotifyUrl,omitempty"`
	GotifyToken           string  `json:"gotifyToken,omitempty" yaml:"gotifyToken,omitempty"`
}

// ArgsDescriptionFunc is set by cmd/anydl to provide colored help text.
// If nil, Description() returns an empty string (go-arg will use default help).
var ArgsDescriptionFunc func() string

// InfoCmd prints metadata and ranked formats for a URL.
type InfoCmd struct {
	URL   string `arg:"positional,required" help:"media or playlist URL"`
	Audio bool   `arg:"--audio" help:"rank the audio-only formats instead of video"`
}

// GetCmd downloads a single media item.
type GetCmd struct {
	URL    string `arg:"positional,required" help:"media URL"`
	Format string `arg:"-f,--format" help:"format id to download (default: recommended for the platform)"`
	Direct bool   `arg:"--direct" help:"skip metadata and name the file from the server response"`
	Audio  bool   `arg:"--audio" help:"pick the recommended audio-only format"`
}

// BatchCmd downloads one format across several URLs or playlist entries.
type BatchCmd struct {
	URLs     []string `arg:"positional" help:"media URLs or .txt files with one URL per line"`
	Format   string   `arg:"-f,--format" default:"best" help:"format id applied to every item"`
	Playlist string   `arg:"--playlist" help:"playlist URL whose entries become batch items"`
	Items    string   `arg:"--items" help:"1-based playlist items to download, e.g. 1,3,5-7 (default: all)"`
}

// PingCmd checks that the backend is reachable.
type PingCmd struct{}

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	Info  *InfoCmd  `arg:"subcommand:info" help:"show metadata and formats"`
	Get   *GetCmd   `arg:"subcommand:get" help:"download a single item"`
	Batch *BatchCmd `arg:"subcommand:batch" help:"download several items in sequence"`
	Ping  *PingCmd  `arg:"subcommand:ping" help:"check backend health"`

	Config   string `arg:"-c,--config" help:"path to a JSON or YAML config file"`
	Server   string `arg:"-s,--server" help:"backend base URL"`
	OutPath  string `arg:"-o,--out" help:"where to download to. Path will be made if it doesn't already exist."`
	Platform string `arg:"-p,--platform" help:"target platform: mac, windows, ios, android, linux, or a browser user-agent string"`
	Attempts int    `arg:"--attempts" help:"attempts per request (default 3)"`
	APILog   string `arg:"--api-log" help:"write a JSON-lines request log to this file"`
}

// Description provides custom help text for go-arg.
func (Args) Description() string {
	if ArgsDescriptionFunc != nil {
		return ArgsDescriptionFunc()
	}
	return ""
}

package types

// PDFConfig holds settings for the PDF-to-Markdown batch converter.
type PDFConfig struct {
	// Image is the container image that runs the marker converter.
	Image string `json:"image" yaml:"image"`

	// MaxPages limits how many pages of each PDF are converted (default 10).
	// Zero leaves the limit to the converter.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// ParallelFactor is passed through to the converter's own worker pool
	// (default 2). It is not interpreted by dataprep.
	ParallelFactor int `json:"parallel_factor" yaml:"parallel_factor"`

	// BatchMultiplier scales the converter's internal batch sizes.
	BatchMultiplier int `json:"batch_multiplier" yaml:"batch_multiplier"`

	// Langs is a comma-separated language hint (e.g. "English,Chinese").
	Langs string `json:"langs,omitempty" yaml:"langs,omitempty"`

	// Validate probes every PDF before conversion and skips unreadable files.
	Validate bool `json:"validate" yaml:"validate"`

	// Overwrite re-converts PDFs whose Markdown output already exists.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`
}

// SplitConfig holds settings for the Markdown section splitter.
type SplitConfig struct {
	// KeepPreamble writes text before the first heading to its own file.
	// By default the splitter writes one file per heading and nothing else.
	KeepPreamble bool `json:"keep_preamble" yaml:"keep_preamble"`
}

// DatasetConfig holds settings shared by the dialogue and QA converters.
type DatasetConfig struct {
	// SystemPrompt is the content of the leading system message.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`

	// TrainRatio is the fraction of records written to the training split
	// (default 0.9).
	TrainRatio float64 `json:"train_ratio" yaml:"train_ratio"`

	// Seed seeds the shuffle. Zero picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	// AssistantSpeaker is the dialogue speaker label mapped to the assistant
	// role (default "A"). Every other label maps to the user role.
	AssistantSpeaker string `json:"assistant_speaker" yaml:"assistant_speaker"`

	// CountTokens reports token totals for each written split.
	CountTokens bool `json:"count_tokens" yaml:"count_tokens"`

	// TokenEncoding names the tiktoken encoding used by CountTokens.
	TokenEncoding string `json:"token_encoding,omitempty" yaml:"token_encoding,omitempty"`
}

// QAConfig holds the line markers recognised by the QA converter.
type QAConfig struct {
	QuestionMarker string `json:"question_marker" yaml:"question_marker"`
	AnswerMarker   string `json:"answer_marker" yaml:"answer_marker"`
}

// ChatMLConfig holds the turn delimiters recognised by the ChatML converter.
type ChatMLConfig struct {
	StartTag string `json:"start_tag" yaml:"start_tag"`
	EndTag   string `json:"end_tag" yaml:"end_tag"`
}

// LedgerConfig controls the SQLite run ledger.
type LedgerConfig struct {
	// Enabled records every run and its per-item outcomes.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file (default ".dataprep/ledger.db").
	Path string `json:"path" yaml:"path"`
}

// Config groups all tool configurations.
type Config struct {
	PDF     PDFConfig     `json:"pdf" yaml:"pdf"`
	Split   SplitConfig   `json:"split" yaml:"split"`
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`
	QA      QAConfig      `json:"qa" yaml:"qa"`
	ChatML  ChatMLConfig  `json:"chatml" yaml:"chatml"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
}

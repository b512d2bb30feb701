package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir   string
	Port         string
	CronSpec     string
	TopN         int
	HTTPTimeout  int
	APIAccessKey string

	// Notification configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	NotifyEmail  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

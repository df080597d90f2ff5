package cli

var (
	verbose    bool
	configPath string
	logFile    string

	// capture commands
	inputDevice string
	monitorName string
	noSudo      bool
	nativeMode  bool

	// record command
	recordName      string
	recordOutputDir string
	recordDebug     bool
	recordCountdown int

	// play command
	playSpeed     string
	playSpeedMode string
	playMinSpeed  float64
	playMaxSpeed  float64
	playLoop      string
	playCount     int
	playDuration  float64
	playPause     float64
	playStatus    bool

	// transform command
	transformOutput string

	// speedtest command
	speedTestSpeeds []float64

	// calibrate command
	calibrateDryRun bool
	cornerMinX      int
	cornerMinY      int
	cornerMaxX      int
	cornerMaxY      int

	// tap command
	tapDurationMs int

	// devices command
	touchOnly bool

	// recordings command
	recordingsDir string
)

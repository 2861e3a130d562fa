package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PlaceholderAccessKey is the literal shipped in example files; it counts as unset
const PlaceholderAccessKey = "YOUR_UNSPLASH_ACCESS_KEY"

// Config holds all configuration options for a fetch run
type Config struct {
	// Unsplash API access
	Unsplash UnsplashConfig `yaml:"unsplash" json:"unsplash"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Image transform settings
	Image ImageConfig `yaml:"image" json:"image"`

	// Pacing between API calls
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Ordered category table
	Categories []Category `yaml:"categories" json:"categories"`
}

// UnsplashConfig holds Unsplash-specific configuration
type UnsplashConfig struct {
	AccessKey string        `yaml:"access_key" json:"access_key"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	Manifest      bool   `yaml:"manifest" json:"manifest"`
}

// ImageConfig holds the bounding box and encoder settings
type ImageConfig struct {
	MaxWidth  int    `yaml:"max_width" json:"max_width"`
	MaxHeight int    `yaml:"max_height" json:"max_height"`
	Quality   int    `yaml:"quality" json:"quality"`
	Engine    string `yaml:"engine" json:"engine"`
}

// RateLimitConfig holds the fixed pause and the hourly request budget
type RateLimitConfig struct {
	Delay           time.Duration `yaml:"delay" json:"delay"`
	RequestsPerHour int           `yaml:"requests_per_hour" json:"requests_per_hour"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Category is one entry of the category table
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// DefaultCategories returns the built-in product category table
func DefaultCategories() []Category {
	return []Category{
		{Name: "food", Terms: []string{"dog food", "cat food", "dog treats"}},
		{Name: "toys", Terms: []string{"cat scratching post", "cat toys", "interactive cat toy"}},
		{Name: "accessories", Terms: []string{"pet carrier", "dog leash collar", "fish tank decorations"}},
		{Name: "housing", Terms: []string{"bird cage", "dog bed", "small animal cage"}},
		{Name: "equipment", Terms: []string{"aquarium filter", "pet water fountain"}},
		{Name: "grooming", Terms: []string{"pet grooming kit", "dog shampoo"}},
	}
}

// DefaultConfig returns a Config instance with default values
func DefaultConfig() *Config {
	return &Config{
		Unsplash: UnsplashConfig{
			BaseURL:   "https://api.unsplash.com",
			UserAgent: "productimg/1.0",
			Timeout:   0, // no explicit timeout
		},
		Output: OutputConfig{
			BaseDirectory: filepath.Join("assets", "images", "products"),
			Manifest:      true,
		},
		Image: ImageConfig{
			MaxWidth:  800,
			MaxHeight: 800,
			Quality:   85,
			Engine:    "imaging",
		},
		RateLimit: RateLimitConfig{
			Delay:           time.Second,
			RequestsPerHour: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Categories: DefaultCategories(),
	}
}

// TermCount returns the number of (category, term) pairs in the table
func (c *Config) TermCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Terms)
	}
	return n
}

// HasAccessKey reports whether a usable access key is configured
func (c *Config) HasAccessKey() bool {
	key := strings.TrimSpace(c.Unsplash.AccessKey)
	return key != "" && key != PlaceholderAccessKey
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if key := os.Getenv("UNSPLASH_ACCESS_KEY"); key != "" {
		c.Unsplash.AccessKey = key
	}
	if key := os.Getenv("PRODUCTIMG_ACCESS_KEY"); key != "" {
		c.Unsplash.AccessKey = key
	}
	if baseURL := os.Getenv("PRODUCTIMG_API_URL"); baseURL != "" {
		c.Unsplash.BaseURL = baseURL
	}

	if outputDir := os.Getenv("PRODUCTIMG_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if delay := os.Getenv("PRODUCTIMG_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid PRODUCTIMG_DELAY: %w", err)
		}
		c.RateLimit.Delay = d
	}

	if quality := os.Getenv("PRODUCTIMG_QUALITY"); quality != "" {
		q, err := strconv.Atoi(quality)
		if err != nil {
			return fmt.Errorf("invalid PRODUCTIMG_QUALITY: %w", err)
		}
		c.Image.Quality = q
	}

	if size := os.Getenv("PRODUCTIMG_MAX_SIZE"); size != "" {
		s, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("invalid PRODUCTIMG_MAX_SIZE: %w", err)
		}
		c.Image.MaxWidth = s
		c.Image.MaxHeight = s
	}

	if engine := os.Getenv("PRODUCTIMG_ENGINE"); engine != "" {
		c.Image.Engine = engine
	}

	if logLevel := os.Getenv("PRODUCTIMG_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func (c *Config) findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".productimg.yaml",
		".productimg.yml",
		"productimg.yaml",
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "productimg", "config.yaml"),
			filepath.Join(home, ".config", "productimg", "config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// normalize canonicalizes names that are matched case-insensitively
func (c *Config) normalize() {
	c.Image.Engine = strings.ToLower(strings.TrimSpace(c.Image.Engine))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Unsplash.BaseURL == "" {
		errs = append(errs, errors.New("unsplash base URL is required"))
	}
	if c.Unsplash.Timeout < 0 {
		errs = append(errs, errors.New("unsplash timeout cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Image.MaxWidth <= 0 || c.Image.MaxHeight <= 0 {
		errs = append(errs, errors.New("image bounding box must be positive"))
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		errs = append(errs, errors.New("JPEG quality must be between 1 and 100"))
	}
	validEngines := map[string]bool{"imaging": true, "nfnt": true}
	if !validEngines[strings.ToLower(c.Image.Engine)] {
		errs = append(errs, fmt.Errorf("invalid resize engine %q", c.Image.Engine))
	}

	if c.RateLimit.Delay < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerHour < 0 {
		errs = append(errs, errors.New("requests per hour cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	errs = append(errs, validateCategories(c.Categories)...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// validateCategories keeps every output path inside the base directory
func validateCategories(categories []Category) []error {
	var errs []error
	if len(categories) == 0 {
		return append(errs, errors.New("at least one category is required"))
	}

	seen := make(map[string]bool)
	for _, cat := range categories {
		name := cat.Name
		switch {
		case strings.TrimSpace(name) == "":
			errs = append(errs, errors.New("category name cannot be empty"))
			continue
		case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
			errs = append(errs, fmt.Errorf("invalid category name %q", name))
			continue
		case seen[name]:
			errs = append(errs, fmt.Errorf("duplicate category %q", name))
			continue
		}
		seen[name] = true

		files := make(map[string]string)
		for _, term := range cat.Terms {
			if strings.TrimSpace(term) == "" {
				errs = append(errs, fmt.Errorf("category %q has an empty search term", name))
				continue
			}
			if strings.ContainsAny(term, `/\`) || strings.Contains(term, "..") {
				errs = append(errs, fmt.Errorf("invalid search term %q in category %q", term, name))
				continue
			}
			file := strings.ReplaceAll(term, " ", "_")
			if prev, ok := files[file]; ok {
				errs = append(errs, fmt.Errorf("terms %q and %q in category %q map to the same file", prev, term, name))
				continue
			}
			files[file] = term
		}
	}
	return errs
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if key, ok := flags["access-key"].(string); ok && key != "" {
		c.Unsplash.AccessKey = key
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if size, ok := flags["max-size"].(int); ok && size > 0 {
		c.Image.MaxWidth = size
		c.Image.MaxHeight = size
	}
	if quality, ok := flags["quality"].(int); ok && quality > 0 {
		c.Image.Quality = quality
	}
	if engine, ok := flags["engine"].(string); ok && engine != "" {
		c.Image.Engine = engine
	}
	if delay, ok := flags["delay"].(time.Duration); ok {
		c.RateLimit.Delay = delay
	}
	if rph, ok := flags["requests-per-hour"].(int); ok {
		c.RateLimit.RequestsPerHour = rph
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok {
		c.Unsplash.Timeout = timeout
	}
	if manifest, ok := flags["manifest"].(bool); ok {
		c.Output.Manifest = manifest
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".env"))
		_ = godotenv.Load(filepath.Join(home, ".productimg.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

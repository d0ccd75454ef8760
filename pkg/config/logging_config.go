package config

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `yaml:"format" koanf:"format" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"output_file" koanf:"output_file"` // Empty for stdout
}

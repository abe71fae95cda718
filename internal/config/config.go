package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string  `mapstructure:"PORT"`
	DBUrl      string  `mapstructure:"DB_URL"`
	RedisUrl   string  `mapstructure:"REDIS_URL"`
	LiveAPIUrl string  `mapstructure:"LIVE_API_URL"`
	MapsAPIUrl string  `mapstructure:"MAPS_API_URL"`
	APIToken   string  `mapstructure:"API_TOKEN"`
	SpeedUnit  string  `mapstructure:"SPEED_UNIT"`
	RadiusKm   float64 `mapstructure:"RADIUS_KM"`
	RacerID    string  `mapstructure:"RACER_ID"`
	RacerName  string  `mapstructure:"RACER_NAME"`
}

func LoadConfig() (c Config, err error) {
	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Set default values
	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("LIVE_API_URL", "https://api.racelink.app")
	viper.SetDefault("MAPS_API_URL", "https://maps.racelink.app")
	viper.SetDefault("SPEED_UNIT", "mph")
	viper.SetDefault("RADIUS_KM", DefaultRadiusKm)

	// Load environment file
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(".") // Look in the project root directory

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// Map the values to the Config struct
	err = viper.Unmarshal(&c)
	return
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFeeds is the RSS list used when no config file names one.
var DefaultFeeds = []string{
	"https://www.eia.gov/rss/todayinenergy.xml",
	"https://www.eia.gov/rss/press_rss.xml",
	"https://www.eia.gov/about/new/WNtest3.php",
	"https://www.eia.gov/petroleum/gasdiesel/includes/gas_diesel_rss.xml",
	"https://www.eia.gov/petroleum/heatingoilpropane/includes/hopu_rss.xml",
	"https://www.nhc.noaa.gov/gtwo.xml",
	"https://news.google.com/rss/search?q=%22natural+gas%22+OR+%22Henry+Hub%22+OR+%22NYMEX+natural+gas%22&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=LNG+export+US+terminal+OR+Freeport+OR+Sabine+Pass&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=ERCOT+OR+PJM+OR+%22power+prices%22+OR+%22grid+stress%22&hl=en-US&gl=US&ceid=US:en",
	"https://news.google.com/rss/search?q=commodities+market+OR+oil+prices+OR+gas+prices+AND+futures&hl=en-US&gl=US&ceid=US:en",
}

// FileConfig is the optional YAML file for presentation and feed settings.
//
//	palette:
//	  LNG: "#4aa3ff"
//	feeds:
//	  - https://www.eia.gov/rss/todayinenergy.xml
//	categories: [STORAGE, LNG]
type FileConfig struct {
	Palette    map[string]string `yaml:"palette,omitempty"`
	Feeds      []string          `yaml:"feeds,omitempty"`
	Categories []string          `yaml:"categories,omitempty"`
}

// LoadFile reads a YAML config file. An empty path yields the defaults; a
// missing file is an error wrapping os.ErrNotExist.
func LoadFile(path string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = append([]string(nil), DefaultFeeds...)
	}
	return cfg, nil
}

func (c *FileConfig) validate() error {
	var errs []error
	for i, f := range c.Feeds {
		u, err := url.Parse(strings.TrimSpace(f))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("config file: feeds[%d] is not an http(s) url: %q", i, f))
		}
	}
	for k, v := range c.Palette {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("config file: palette entry %q has an empty name or color", k))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"os"

	"github.com/spf13/viper"
)

// mergeEnvFiles merges KEY=VALUE files into v. Missing or unreadable files are
// skipped; this is a dev convenience only.
func mergeEnvFiles(v *viper.Viper, paths ...string) {
	v.SetConfigType("env")
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		_ = v.MergeConfig(f)
		_ = f.Close()
	}
}

package env

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

func String(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return def
}

func Bool(key string, def bool) (bool, error) {
	if v, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.Wrapf(err, "parse %s", key)
		}

		return b, nil
	}

	return def, nil
}

func Int(key string, def int) (int, error) {
	if v, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Wrapf(err, "parse %s", key)
		}

		return i, nil
	}

	return def, nil
}

package botkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseJSON разбирает аргументы команды, переданные json объектом
func ParseJSON[T any](src string) (T, error) {
	var args T

	if strings.TrimSpace(src) == "" {
		return args, errors.New("empty arguments")
	}

	if err := json.Unmarshal([]byte(src), &args); err != nil {
		return args, fmt.Errorf("parse arguments: %w", err)
	}

	return args, nil
}

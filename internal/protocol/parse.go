package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmptyCommand = errors.New("empty command")

// ParseCommand reads the line-oriented form typed at the CLI:
//
//	up | down | left | right
//	locate <lat> <lng>
//	take <i,j> | deposit <i,j>
//	save | restore <index> | geo
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "up", "down", "left", "right":
		if err := wantArgs(verb, args, 0); err != nil {
			return Command{}, err
		}
		return Move(strings.ToUpper(verb)), nil
	case "move":
		if err := wantArgs(verb, args, 1); err != nil {
			return Command{}, err
		}
		dir := strings.ToUpper(args[0])
		if !IsDirection(dir) {
			return Command{}, fmt.Errorf("move: unknown direction %q", args[0])
		}
		return Move(dir), nil
	case "locate":
		if err := wantArgs(verb, args, 2); err != nil {
			return Command{}, err
		}
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("locate: lat: %w", err)
		}
		lng, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("locate: lng: %w", err)
		}
		if !finite(lat) || !finite(lng) {
			return Command{}, fmt.Errorf("locate: coordinate must be finite, got %v %v", lat, lng)
		}
		return Locate(lat, lng), nil
	case "take", "deposit":
		if err := wantArgs(verb, args, 1); err != nil {
			return Command{}, err
		}
		if verb == "take" {
			return Take(args[0]), nil
		}
		return Deposit(args[0]), nil
	case "save":
		if err := wantArgs(verb, args, 0); err != nil {
			return Command{}, err
		}
		return Save(), nil
	case "restore":
		if err := wantArgs(verb, args, 1); err != nil {
			return Command{}, err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("restore: index: %w", err)
		}
		return Restore(n), nil
	case "geo", "sensor":
		if err := wantArgs(verb, args, 0); err != nil {
			return Command{}, err
		}
		return GeoToggle(), nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func wantArgs(verb string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", verb, n, len(args))
	}
	return nil
}

package rabbit

import (
	"time"
)

// retry runs fn up to n times with a fixed pause between attempts and
// returns the last error when every attempt fails.
func retry(n int, sleep time.Duration, fn func() error) error {
	var err error
	for range n {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(sleep)
	}
	return err
}

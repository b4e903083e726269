package logger

// LogDownload logs the outcome of persisting one media item.
func LogDownload(username, itemID, kind string, success bool, err error) {
	fields := map[string]interface{}{
		"username": username,
		"item_id":  itemID,
		"kind":     kind,
		"success":  success,
	}

	l := GetLogger().WithFields(fields)

	switch {
	case err != nil:
		l.WithError(err).Error("download failed")
	case success:
		l.Info("download completed")
	default:
		l.Warn("download skipped")
	}
}

// LogRateLimit logs rate limiting events.
func LogRateLimit(endpoint string, waitSeconds int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":     endpoint,
		"wait_seconds": waitSeconds,
		"action":       "rate_limited",
	}).Warn("rate limit reached, backing off")
}

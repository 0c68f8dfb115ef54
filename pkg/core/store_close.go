package core

// Close closes the database connection and releases resources. It is
// idempotent; every call after the first returns nil without touching the
// handle.
func (s *DictStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}

	s.logger.Info("dictionary store closed")
	return nil
}

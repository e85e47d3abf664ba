package domain

// HostingProgress derives a stable display progress percentage from a book
// id. Pure hash, not randomness: the same id always yields the same value,
// so the reading-progress bar does not jump between renders.
// Range: [20, 85].
func HostingProgress(bookID string) int {
	var hash int
	for _, r := range bookID {
		hash += int(r)
	}
	return 20 + (hash % 66)
}

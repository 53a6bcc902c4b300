package repos

// Status represents the harvesting status of a repository
type Status string

const (
	StatusPending   Status = "pending"
	StatusHarvested Status = "harvested"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsDone returns true once contributor data has been recorded
func (s Status) IsDone() bool {
	return s == StatusHarvested
}

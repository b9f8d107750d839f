package core

// DBOrdering is the sort order of a repository query.
type DBOrdering struct {
	Field     string
	Ascending bool
}

// String renders the ordering as an SQL ORDER BY term.
func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Direction is the ordering as a document store sort value: 1 or -1.
func (ord DBOrdering) Direction() int {
	if ord.Ascending {
		return 1
	}
	return -1
}

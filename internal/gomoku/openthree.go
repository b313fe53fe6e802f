package gomoku

// cellRule constrains one slot of an open-three window.
type cellRule int8

const (
	anyCell cellRule = iota
	emptyCell
	blackCell
)

const (
	windowSize   = 9
	windowCenter = 4

	// forbiddenThreeCount open threes through one point make a double three.
	forbiddenThreeCount = 2
)

type template [windowSize]cellRule

// openThreeTemplates are the shapes a new black stone at the window centre
// turns into an open three. The centre is still empty when they are matched.
// The catalog is closed under reversal, so scanning each direction one way suffices.
var openThreeTemplates = [...]template{
	{anyCell, emptyCell, blackCell, blackCell, emptyCell, emptyCell, anyCell, anyCell, anyCell},
	{emptyCell, blackCell, blackCell, blackCell, emptyCell, emptyCell, anyCell, anyCell, anyCell},
	{anyCell, emptyCell, blackCell, blackCell, emptyCell, blackCell, emptyCell, anyCell, anyCell},
	{anyCell, anyCell, emptyCell, blackCell, emptyCell, blackCell, emptyCell, anyCell, anyCell},
	{anyCell, anyCell, emptyCell, blackCell, emptyCell, blackCell, blackCell, emptyCell, anyCell},
	{anyCell, anyCell, anyCell, emptyCell, emptyCell, blackCell, blackCell, blackCell, emptyCell},
	{anyCell, anyCell, anyCell, emptyCell, emptyCell, blackCell, blackCell, emptyCell, anyCell},
}

func (that cellRule) matches(stone Stone) bool {
	switch that {
	case anyCell:
		return true
	case emptyCell:
		return stone == Empty
	case blackCell:
		return stone == Black
	default:
		return false
	}
}

func (that template) matches(board *Board, x, y int, dir Direction) bool {
	for i, rule := range that {
		offset := i - windowCenter
		if !rule.matches(board.Query(x+offset*dir.DX, y+offset*dir.DY)) {
			return false
		}
	}

	return true
}

// HasOpenThree - reports whether a black stone at (x, y) would form an open three along dir.
func HasOpenThree(board *Board, x, y int, dir Direction) bool {
	for _, tmpl := range openThreeTemplates {
		if tmpl.matches(board, x, y, dir) {
			return true
		}
	}

	return false
}

// OpenThreeDirections - directions in which a black stone at (x, y) would form an open three.
func OpenThreeDirections(board *Board, x, y int) []Direction {
	var found []Direction
	for _, dir := range Directions {
		if HasOpenThree(board, x, y, dir) {
			found = append(found, dir)
		}
	}

	return found
}

// WouldBeOpenThree - reports whether a black stone at (x, y) is a forbidden double three.
// It is evaluated before the stone is placed and never mutates the board.
func WouldBeOpenThree(board *Board, x, y int) bool {
	count := 0
	for _, dir := range Directions {
		if HasOpenThree(board, x, y, dir) {
			count++
		}
	}

	return count >= forbiddenThreeCount
}

package gomoku

const winLength = 5

// Direction - unit step along one of the four line orientations.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Horizontal   = Direction{DX: 1, DY: 0}
	Vertical     = Direction{DX: 0, DY: 1}
	Diagonal     = Direction{DX: 1, DY: 1}
	AntiDiagonal = Direction{DX: 1, DY: -1}

	Directions = [4]Direction{Horizontal, Vertical, Diagonal, AntiDiagonal}
)

func (that Direction) String() string {
	switch that {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	case AntiDiagonal:
		return "anti-diagonal"
	default:
		return "unknown"
	}
}

// HasWin - reports whether color owns a run of exactly five anywhere on the board.
func HasWin(board *Board, color Stone) bool {
	_, ok := WinningLine(board, color)
	return ok
}

// WinningLine - returns the first run of exactly five stones of color.
// A run of six or more never qualifies: whichever start is tried, one of
// its boundary cells also holds color.
func WinningLine(board *Board, color Stone) ([]Coordinate, bool) {
	size := board.Size()
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for _, dir := range Directions {
				if isFiveFrom(board, x, y, dir, color) {
					return lineFrom(x, y, dir), true
				}
			}
		}
	}

	return nil, false
}

func isFiveFrom(board *Board, x, y int, dir Direction, color Stone) bool {
	if board.Query(x-dir.DX, y-dir.DY) == color {
		return false
	}

	for i := 0; i < winLength; i++ {
		if board.Query(x+i*dir.DX, y+i*dir.DY) != color {
			return false
		}
	}

	return board.Query(x+winLength*dir.DX, y+winLength*dir.DY) != color
}

func lineFrom(x, y int, dir Direction) []Coordinate {
	line := make([]Coordinate, 0, winLength)
	for i := 0; i < winLength; i++ {
		line = append(line, Coordinate{X: x + i*dir.DX, Y: y + i*dir.DY})
	}

	return line
}

package gomoku

import (
	"errors"
	"fmt"
)

// DefaultSize is the standard 19x19 board.
const DefaultSize = 19

var ErrInvalidBoard = errors.New("invalid board")

// Coordinate - zero-based intersection, X is the column and Y the row.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board is a square, row-major grid of stones.
type Board struct {
	size  int
	cells []Stone
}

func NewBoard(size int) *Board {
	board := &Board{}
	board.Reset(size)

	return board
}

// LoadBoard - rebuilds a board from persisted rows.
func LoadBoard(rows [][]Stone) (*Board, error) {
	size := len(rows)
	if size == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidBoard)
	}

	board := NewBoard(size)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, y, len(row), size)
		}

		for x, stone := range row {
			switch stone {
			case Empty, Black, White:
				board.cells[board.index(x, y)] = stone
			case Outside:
				return nil, fmt.Errorf("%w: outside stone stored at (%d,%d)", ErrInvalidBoard, x, y)
			default:
				return nil, fmt.Errorf("%w: %v at (%d,%d)", ErrInvalidBoard, stone, x, y)
			}
		}
	}

	return board, nil
}

// Reset - replaces the whole grid with a fresh empty one of the given size.
func (that *Board) Reset(size int) {
	that.size = size
	that.cells = make([]Stone, size*size)
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < that.size && y < that.size
}

// Query - returns the stone at (x, y), or Outside when either axis is off the board.
func (that *Board) Query(x, y int) Stone {
	if !that.InBounds(x, y) {
		return Outside
	}

	return that.cells[that.index(x, y)]
}

// Place - puts a stone on an empty, in-range intersection.
// Callers validate first; a violation here is a programming error.
func (that *Board) Place(x, y int, color Stone) {
	if !color.IsPlayer() {
		panic(fmt.Sprintf("gomoku: place %v at (%d,%d)", color, x, y))
	}

	if current := that.Query(x, y); current != Empty {
		panic(fmt.Sprintf("gomoku: place %v at (%d,%d) holding %v", color, x, y, current))
	}

	that.cells[that.index(x, y)] = color
}

// Count - number of stones of the given color.
func (that *Board) Count(color Stone) int {
	count := 0
	for _, cell := range that.cells {
		if cell == color {
			count++
		}
	}

	return count
}

// Rows - copy of the grid, indexed [y][x].
func (that *Board) Rows() [][]Stone {
	rows := make([][]Stone, that.size)
	for y := range rows {
		rows[y] = make([]Stone, that.size)
		copy(rows[y], that.cells[y*that.size:(y+1)*that.size])
	}

	return rows
}

func (that *Board) index(x, y int) int {
	return y*that.size + x
}

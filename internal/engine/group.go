package engine

import (
	"webgo/internal/domain/game"
)

// AdjacentPositions returns the in-bounds 4-neighbors of pos.
func AdjacentPositions(pos game.Position, size int) []game.Position {
	candidates := [4]game.Position{
		{X: pos.X - 1, Y: pos.Y},
		{X: pos.X + 1, Y: pos.Y},
		{X: pos.X, Y: pos.Y - 1},
		{X: pos.X, Y: pos.Y + 1},
	}
	adjacent := make([]game.Position, 0, 4)
	for _, p := range candidates {
		if InBounds(p, size) {
			adjacent = append(adjacent, p)
		}
	}
	return adjacent
}

func InBounds(pos game.Position, size int) bool {
	return pos.X >= 0 && pos.X < size && pos.Y >= 0 && pos.Y < size
}

// FindGroup returns the maximal 4-connected same-color group containing start.
// Returns nil when start is empty.
func FindGroup(stones map[string]game.Color, start game.Position, size int) []game.Position {
	color, ok := stones[start.Key()]
	if !ok {
		return nil
	}

	var group []game.Position
	visited := map[string]bool{}
	queue := []game.Position{start}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		key := pos.Key()
		if visited[key] {
			continue
		}
		if stones[key] != color {
			continue
		}
		visited[key] = true
		group = append(group, pos)

		for _, adj := range AdjacentPositions(pos, size) {
			adjKey := adj.Key()
			if !visited[adjKey] && stones[adjKey] == color {
				queue = append(queue, adj)
			}
		}
	}

	return group
}

// CountLiberties counts the distinct empty 4-neighbors of a group.
func CountLiberties(stones map[string]game.Color, group []game.Position, size int) int {
	liberties := map[string]bool{}
	for _, pos := range group {
		for _, adj := range AdjacentPositions(pos, size) {
			key := adj.Key()
			if _, occupied := stones[key]; !occupied {
				liberties[key] = true
			}
		}
	}
	return len(liberties)
}

// GroupLiberties returns the liberty positions themselves.
func GroupLiberties(stones map[string]game.Color, group []game.Position, size int) []game.Position {
	seen := map[string]bool{}
	var liberties []game.Position
	for _, pos := range group {
		for _, adj := range AdjacentPositions(pos, size) {
			key := adj.Key()
			if _, occupied := stones[key]; occupied || seen[key] {
				continue
			}
			seen[key] = true
			liberties = append(liberties, adj)
		}
	}
	return liberties
}

// GroupsOf enumerates every maximal group of the given color.
func GroupsOf(stones map[string]game.Color, color game.Color, size int) [][]game.Position {
	visited := map[string]bool{}
	var groups [][]game.Position

	for key, stoneColor := range stones {
		if stoneColor != color || visited[key] {
			continue
		}
		pos, err := game.ParseKey(key)
		if err != nil {
			continue
		}
		group := FindGroup(stones, pos, size)
		for _, p := range group {
			visited[p.Key()] = true
		}
		groups = append(groups, group)
	}

	return groups
}

// capturedGroups returns every group of the given color with zero liberties.
func capturedGroups(stones map[string]game.Color, color game.Color, size int) [][]game.Position {
	var captured [][]game.Position
	for _, group := range GroupsOf(stones, color, size) {
		if CountLiberties(stones, group, size) == 0 {
			captured = append(captured, group)
		}
	}
	return captured
}

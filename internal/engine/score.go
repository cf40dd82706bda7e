package engine

import (
	"webgo/internal/domain/game"
)

// CalculateTerritory flood-fills every empty region after dead stones are
// lifted. A region counts for a color only when every stone bordering it is
// that color; mixed or unbordered regions belong to nobody.
func CalculateTerritory(stones map[string]game.Color, size int, deadStones []game.Position) game.Territory {
	active := game.CloneStones(stones)
	for _, pos := range deadStones {
		delete(active, pos.Key())
	}

	territory := game.Territory{Black: []game.Position{}, White: []game.Position{}}
	visited := map[string]bool{}

	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			start := game.Position{X: x, Y: y}
			startKey := start.Key()
			if visited[startKey] {
				continue
			}
			if _, occupied := active[startKey]; occupied {
				continue
			}

			var region []game.Position
			borders := map[game.Color]bool{}
			regionVisited := map[string]bool{}
			queue := []game.Position{start}

			for len(queue) > 0 {
				current := queue[0]
				queue = queue[1:]

				key := current.Key()
				if regionVisited[key] {
					continue
				}
				regionVisited[key] = true

				if color, occupied := active[key]; occupied {
					borders[color] = true
					continue
				}

				region = append(region, current)
				visited[key] = true

				for _, adj := range AdjacentPositions(current, size) {
					if !regionVisited[adj.Key()] {
						queue = append(queue, adj)
					}
				}
			}

			if len(borders) != 1 {
				continue
			}
			if borders[game.Black] {
				territory.Black = append(territory.Black, region...)
			} else {
				territory.White = append(territory.White, region...)
			}
		}
	}

	return territory
}

// CalculateScore computes the final score. Chinese rules count territory plus
// live stones; Japanese rules count territory plus prisoners (captures plus
// removed dead stones of the opposing color). White adds komi either way.
func CalculateScore(stones map[string]game.Color, size int, captures game.Captures, deadStones []game.Position, komi float64, ruleSet game.RuleSet) game.Score {
	territory := CalculateTerritory(stones, size, deadStones)

	dead := map[string]bool{}
	deadByColor := map[game.Color]int{}
	for _, pos := range deadStones {
		key := pos.Key()
		dead[key] = true
		if color, ok := stones[key]; ok {
			deadByColor[color]++
		}
	}

	liveByColor := map[game.Color]int{}
	for key, color := range stones {
		if !dead[key] {
			liveByColor[color]++
		}
	}

	if ruleSet == game.RuleSetJapanese {
		return game.Score{
			Black: float64(len(territory.Black) + captures.Black + deadByColor[game.White]),
			White: float64(len(territory.White)+captures.White+deadByColor[game.Black]) + komi,
		}
	}
	return game.Score{
		Black: float64(len(territory.Black) + liveByColor[game.Black]),
		White: float64(len(territory.White)+liveByColor[game.White]) + komi,
	}
}

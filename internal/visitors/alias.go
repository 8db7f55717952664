package visitors

import "hash/fnv"

var aliasAdjectives = []string{
	"Curious", "Happy", "Clever", "Wise", "Playful", "Brave", "Swift", "Gentle", "Smart", "Busy",
	"Bold", "Bright", "Calm", "Cheerful", "Daring", "Eager", "Friendly", "Graceful", "Jolly", "Keen",
	"Lively", "Merry", "Nimble", "Patient", "Quick", "Quiet", "Radiant", "Serene", "Vivid", "Witty",
}

var aliasAnimals = []string{
	"Panda", "Fox", "Owl", "Otter", "Lion", "Eagle", "Deer", "Raven", "Beaver", "Koala",
	"Sloth", "Hamster", "Cat", "Bear", "Penguin", "Kangaroo", "Parrot", "Giraffe", "Duck", "Raccoon",
	"Dolphin", "Whale", "Seahorse", "Turtle", "Octopus", "Falcon", "Hawk", "Swan", "Crane", "Heron",
	"Wolf", "Tiger", "Rabbit", "Hedgehog", "Squirrel", "Badger", "Lynx", "Moose", "Ibex", "Crow",
}

// Alias returns a stable, anonymized display name for a visitor signature.
func Alias(signature string) string {
	h := fnv.New32a()
	h.Write([]byte(signature))
	index := int(h.Sum32())

	adjIndex := index % len(aliasAdjectives)
	animalIndex := (index / len(aliasAdjectives)) % len(aliasAnimals)

	return aliasAdjectives[adjIndex] + " " + aliasAnimals[animalIndex]
}

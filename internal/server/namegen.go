package server

import (
	"fmt"
	"math/rand"
)

// Room names are adjective-noun-verb triples, readable enough to share
// out loud. The registry retries on collision, so the lists only need to
// keep the collision rate low at realistic room counts.

var nameAdjectives = []string{
	"quick", "lazy", "bright", "calm", "eager", "fancy", "gentle", "happy",
	"jolly", "kind", "lively", "merry", "nice", "proud", "silly", "witty",
	"brave", "clever", "dizzy", "fuzzy", "grand", "humble", "icy", "keen",
	"loud", "mellow", "noble", "odd", "plucky", "quiet", "rusty", "shiny",
	"tiny", "vivid", "wild", "zesty", "bold", "crisp", "dusty", "early",
}

var nameNouns = []string{
	"otter", "falcon", "badger", "walrus", "heron", "lemur", "marmot",
	"puffin", "quokka", "raven", "salmon", "tapir", "urchin", "vole",
	"weasel", "yak", "zebra", "alpaca", "bison", "condor", "dingo",
	"egret", "ferret", "gecko", "hyena", "ibis", "jackal", "koala",
	"llama", "moose", "newt", "ocelot", "panda", "rabbit", "shrew",
	"toucan", "viper", "wombat", "lynx", "stork",
}

var nameVerbs = []string{
	"jumps", "sings", "dives", "waves", "spins", "rolls", "glides",
	"hops", "darts", "drifts", "floats", "leaps", "marches", "paddles",
	"prowls", "races", "sails", "skips", "slides", "soars", "sprints",
	"struts", "swims", "trots", "twirls", "wanders", "whirls", "zooms",
	"ambles", "bounces", "canters", "dashes", "gallops", "hikes",
	"strolls", "saunters", "scurries", "shuffles", "tumbles", "vaults",
}

func randomRoomName(rng *rand.Rand) string {
	return fmt.Sprintf("%s-%s-%s",
		nameAdjectives[rng.Intn(len(nameAdjectives))],
		nameNouns[rng.Intn(len(nameNouns))],
		nameVerbs[rng.Intn(len(nameVerbs))],
	)
}

//
// ChessLib - a chess data structure and move generation library in GO
//
// MIT License
//
// Copyright (c) 2017-2020 Rudy Alex Kohn
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

// Chesslib is a chess data structure and move generation library.
// This command is a small front end to run perft tests and benchmarks
// on the library.
package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/pkg/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rudzen/chesslib/internal/config"
	"github.com/rudzen/chesslib/internal/logging"
	"github.com/rudzen/chesslib/pkg/movegen"
	"github.com/rudzen/chesslib/pkg/position"
)

var out = message.NewPrinter(language.German)

const version = "1.0.0"

func main() {
	// command line args
	versionInfo := flag.Bool("version", false, "prints version and exits")
	configFile := flag.String("config", "./config.toml", "path to configuration settings file")
	logLvl := flag.String("loglvl", "", "standard log level\n(critical|error|warning|notice|info|debug)")
	fen := flag.String("fen", position.StartFen, "fen for the perft position")
	perftDepth := flag.Int("perft", 0, "runs perft from depth 1 to the given depth on the -fen position")
	bulk := flag.Bool("bulk", false, "use bulk counting (no statistics) for perft")
	parallel := flag.Int("parallel", 0, "runs a parallel perft with the given number of workers\n0 uses the configured number of workers when -bulk is set")
	profileWhat := flag.String("profile", "", "write a profile of the perft run\n(cpu|mem)")
	flag.Parse()

	// print version info and exit
	if *versionInfo {
		printVersionInfo()
		return
	}

	// set config file
	// this needs to be set before config.Setup() is called. Otherwise the default will be used.
	config.ConfFile = *configFile

	// read config file
	config.Setup()

	// set log level from cmd line options overwriting config file or defaults
	if lvl, found := config.LogLevels[*logLvl]; found {
		config.LogLevel = lvl
	}

	// resetting log level of the standard log - required as most packages
	// include the standard logger as a global var and therefore even before
	// main() is called. These loggers start with the default log level and
	// must be reset to the actual level required.
	logging.GetLog()

	if *perftDepth <= 0 {
		flag.Usage()
		return
	}

	// profiling
	switch *profileWhat {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	// perft
	perft := movegen.NewPerft()
	if *parallel > 0 || (*parallel == 0 && config.Settings.Perft.NumWorkers > 1 && *bulk) {
		workers := *parallel
		if workers == 0 {
			workers = config.Settings.Perft.NumWorkers
		}
		for depth := 1; depth <= *perftDepth; depth++ {
			perft.StartPerftParallel(*fen, depth, workers)
		}
		return
	}
	perft.StartPerftMulti(*fen, 1, *perftDepth, *bulk)
}

func printVersionInfo() {
	out.Printf("chesslib %s\n", version)
	out.Printf("Environment:\n")
	out.Printf("  Using GO version %s\n", runtime.Version())
	out.Printf("  Running %s using %s as a compiler\n", runtime.GOARCH, runtime.Compiler)
	out.Printf("  Number of CPU: %d\n", runtime.NumCPU())
	fmt.Println()
}

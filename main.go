package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/dmatteo/go-dotmatrix/dotmatrix"
)

const (
	defaultLoadAddr = 0x0100
	defaultSteps    = 10000
)

func main() {
	app := cli.NewApp()

	app.Name = "dotmatrix"
	app.Description = "An 8-bit CPU emulator core with a debugger"
	app.Action = runProgram

	app.Run(os.Args)
}

func runProgram(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no program file provided")
	}

	program, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	m := dotmatrix.New()
	m.LoadProgram(defaultLoadAddr, program)

	if err := m.RunSteps(defaultSteps); err != nil {
		return err
	}

	fmt.Println(m.DebugInfo())
	return nil
}

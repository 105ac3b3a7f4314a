//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"minesweeper/config"
	"minesweeper/game"
	"minesweeper/server"
	"minesweeper/session"
	"minesweeper/viewmodel"
)

var sess = session.New(session.RandomPlacers(0), nil)

// toJSON はエラーなら {"error": "..."} を返します
func toJSON(view viewmodel.GameView, err error) any {
	if err != nil {
		return errorJSON(err)
	}
	data, _ := json.Marshal(view)
	return string(data)
}

func errorJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}

func newGameWrapper(this js.Value, args []js.Value) any {
	// JS側から goNewGame("beginner") または goNewGame(rows, cols, mines) と呼ばれる想定
	p := game.DefaultPreset
	switch {
	case len(args) == 1:
		p, _ = config.ParseGameArgs([]string{args[0].String()})
	case len(args) >= 3:
		p = game.Preset{Name: "custom", Rows: args[0].Int(), Cols: args[1].Int(), Mines: args[2].Int()}
	}
	return toJSON(sess.NewGame(p))
}

func cellWrapper(intent func(r, c int) (viewmodel.GameView, error)) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return nil
		}
		return toJSON(intent(args[0].Int(), args[1].Int()))
	})
}

// ゲームがまだなければ "{}" を返す
func stateWrapper(this js.Value, args []js.Value) any {
	return viewmodel.NewGameView(sess.Board(), sess.ID())
}

func botStepWrapper(this js.Value, args []js.Value) any {
	view, move, err := sess.BotStep()
	if err != nil {
		return errorJSON(err)
	}
	resp := server.BotResponse{Game: view}
	if move != nil {
		resp.Move = server.NewMoveView(move)
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("goNewGame", js.FuncOf(newGameWrapper))
	js.Global().Set("goState", js.FuncOf(stateWrapper))
	js.Global().Set("goOpenCell", cellWrapper(sess.Reveal))
	js.Global().Set("goToggleFlag", cellWrapper(sess.ToggleFlag))
	js.Global().Set("goChord", cellWrapper(sess.Chord))
	js.Global().Set("goBotStep", js.FuncOf(botStepWrapper))

	println("Go WebAssembly Initialized")
	<-c
}

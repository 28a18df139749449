package main

import (
	"fmt"
	"io"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/spf13/cobra"
)

func newPinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "List stored bookmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(false)
			defer a.Close()

			store, err := a.initStorage()
			if err != nil {
				return err
			}
			defer store.Close()
			return listPins(cmd.OutOrStdout(), store)
		},
	}
}

func listPins(w io.Writer, store storage.Backend) error {
	slots, err := store.ListPins()
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(w, "no pins saved")
		return nil
	}
	for _, slot := range slots {
		p, err := store.LoadPin(slot)
		if err != nil {
			fmt.Fprintf(w, "pin %d: %v\n", slot, err)
			continue
		}
		fmt.Fprintf(w, "pin %d: origin %s target %s\n", slot, pinVec(p.Origin), pinVec(p.Target))
	}
	return nil
}

func pinVec(v *model.Vec3) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

package engine

import "testing"

func tradeWorld() *WorldPackage {
	return &WorldPackage{
		StartRoomID: "r1",
		Rooms: map[string]Room{
			"r1": {ID: "r1", Name: "Corridor", NPCIDs: []string{"mara"}},
		},
		Items: map[string]Item{
			"repair_kit": {ID: "repair_kit", Name: "repair kit"},
			"ration_bar": {ID: "ration_bar", Name: "ration bar"},
		},
		NPCs: map[string]NPC{
			"mara": {
				ID:               "mara",
				Name:             "Mara",
				HomeRoomID:       "r1",
				InventoryItemIDs: []string{"ration_bar"},
			},
		},
	}
}

// Trade must atomically swap inventories: the offered item leaves the
// player and lands in the NPC's mutable inventory, and the requested item
// leaves the NPC's mutable inventory and lands on the player, so every
// item id lives in exactly one place.
func TestTradeSwapsInventoriesAtomically(t *testing.T) {
	w := tradeWorld()
	o := NewOverlay(w)
	o.AddItem("repair_kit", 1)
	e := &Engine{world: w, overlay: o}

	res, err := e.Trade("mara", "repair_kit", "ration_bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message == "" {
		t.Fatalf("expected a confirmation message")
	}
	if o.HasItem("repair_kit") {
		t.Fatalf("repair_kit should have left the player's inventory")
	}
	if !o.HasItem("ration_bar") {
		t.Fatalf("ration_bar should have been given to the player")
	}
	state := o.NPCs["mara"]
	if containsID(state.InventoryItemIDs, "ration_bar") {
		t.Fatalf("mara should no longer hold ration_bar")
	}
	if !containsID(state.InventoryItemIDs, "repair_kit") {
		t.Fatalf("mara should now hold repair_kit")
	}
}

// A requested item that already traded away once must not be tradeable
// again: it has depleted from the NPC's inventory.
func TestTradeDepletesRequestedItemAfterFirstTrade(t *testing.T) {
	w := tradeWorld()
	o := NewOverlay(w)
	o.AddItem("repair_kit", 2)
	e := &Engine{world: w, overlay: o}

	if _, err := e.Trade("mara", "repair_kit", "ration_bar"); err != nil {
		t.Fatalf("first trade: unexpected error: %v", err)
	}

	res, err := e.Trade("mara", "repair_kit", "ration_bar")
	if err != nil {
		t.Fatalf("second trade: unexpected error: %v", err)
	}
	if res.Message != "they don't have that" {
		t.Fatalf("second trade message = %q, want %q", res.Message, "they don't have that")
	}
	if o.RemoveItem("repair_kit", 1) != 1 {
		t.Fatalf("player should still be carrying the second repair_kit (trade must not have consumed it)")
	}
}

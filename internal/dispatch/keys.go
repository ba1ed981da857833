package dispatch

// Keys lists the keypad keys in display order: digits, then cancel and menu.
var Keys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "C", "0", "M"}

const (
	// KeyCancel cancels an enquiry on the CAM.
	KeyCancel = "C"

	// KeyMenu asks the CAM to open its menu.
	KeyMenu = "M"
)

// ValidKey reports whether k is one of the keypad [Keys].
func ValidKey(k string) bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}

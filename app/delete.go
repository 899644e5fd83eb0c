package app

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/store"
)

// delRecords tombstones all the specified day entries. It requests for
// confirmation before proceeding with the operation.
func delRecords(
	db store.DB,
	records []*record.DayRecord,
) error {
	if len(records) == 0 {
		pterm.Info.Println(noRecordsMsg)
		return nil
	}

	printRecordsTable(os.Stdout, records)

	warning := pterm.Warning.Sprint(
		"The above entries will be deleted. Press ENTER to proceed",
	)

	fmt.Fprint(os.Stdout, warning)

	reader := bufio.NewReader(os.Stdin)

	_, _ = reader.ReadString('\n')

	for _, r := range records {
		if err := db.DeleteRecord(r); err != nil {
			return err
		}
	}

	return nil
}

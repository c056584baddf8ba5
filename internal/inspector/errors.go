package inspector

import "fmt"

func errInvalidFcCtrl(c FcCtrl) error {
	return fmt.Errorf("inspector: unhandled fc_ctrl %v", c)
}

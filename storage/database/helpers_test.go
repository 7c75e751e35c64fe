package database_test

import "github.com/trezcool/presence/core/admin"

func adminInput() admin.NewAdmin {
	return admin.NewAdmin{Name: "Grace", Surname: "Hopper", Email: "grace@presence.app", Password: "cobol-1959"}
}

package model

// District is one of the fixed health-service districts the network operates
// in. Booking authorization is scoped by district: a patient may only book
// inside their registered district unless the actor holds an elevated role.
type District string

const (
	DistrictAmajuba      District = "amajuba"
	DistrictBuffaloCity  District = "buffalo-city"
	DistrictCapricorn    District = "capricorn"
	DistrictEhlanzeni    District = "ehlanzeni"
	DistrictEkurhuleni   District = "ekurhuleni"
	DistrictJohannesburg District = "johannesburg"
	DistrictNamakwa      District = "namakwa"
	DistrictTshwane      District = "tshwane"
	DistrictUgu          District = "ugu"
	DistrictVhembe       District = "vhembe"
)

// Districts lists every recognized district code.
var Districts = []District{
	DistrictAmajuba,
	DistrictBuffaloCity,
	DistrictCapricorn,
	DistrictEhlanzeni,
	DistrictEkurhuleni,
	DistrictJohannesburg,
	DistrictNamakwa,
	DistrictTshwane,
	DistrictUgu,
	DistrictVhembe,
}

// ruralDistricts carries the districts designated rural by the department's
// access-equity programme. Bookings there receive a priority bonus.
var ruralDistricts = map[District]bool{
	DistrictNamakwa: true,
	DistrictUgu:     true,
	DistrictVhembe:  true,
}

func (d District) Valid() bool {
	for _, known := range Districts {
		if d == known {
			return true
		}
	}
	return false
}

// IsRural reports whether the district is part of the rural access programme.
func (d District) IsRural() bool {
	return ruralDistricts[d]
}

package category

// Built-in categories. Kakao group codes are the documented category_group
// vocabulary; SEMAS codes are mid-class prefixes from the store-directory
// classification (I212 = non-alcoholic beverage shops, i.e. cafes).
var defaultCategories = []Category{
	{
		Key:            "cafe",
		Display:        "카페",
		KakaoGroupCode: "CE7",
		SemasCodes:     []string{"I212"},
		Keywords:       []string{"카페", "커피", "까페", "다방", "cafe", "coffee"},
		Aliases:        []string{"커피숍", "커피전문점", "coffee shop"},
	},
	{
		Key:            "restaurant",
		Display:        "음식점",
		KakaoGroupCode: "FD6",
		SemasCodes:     []string{"I201", "I202", "I203", "I204", "I205"},
		Keywords:       []string{"식당", "음식점", "레스토랑", "restaurant"},
		Aliases:        []string{"밥집", "맛집"},
	},
	{
		Key:              "chicken",
		Display:          "치킨",
		KakaoGroupCode:   "FD6",
		KakaoNameFilters: []string{"치킨"},
		SemasCodes:       []string{"I205"},
		Keywords:         []string{"치킨", "통닭", "닭강정", "chicken"},
		Aliases:          []string{"치킨집"},
	},
	{
		Key:            "convenience",
		Display:        "편의점",
		KakaoGroupCode: "CS2",
		Keywords:       []string{"편의점", "cu", "gs25", "세븐일레븐", "이마트24", "미니스톱"},
		Aliases:        []string{"convenience store", "슈퍼"},
	},
	{
		Key:            "pharmacy",
		Display:        "약국",
		KakaoGroupCode: "PM9",
		Keywords:       []string{"약국", "pharmacy"},
		Aliases:        []string{"드럭스토어"},
	},
	{
		Key:            "hospital",
		Display:        "병원",
		KakaoGroupCode: "HP8",
		Keywords:       []string{"병원", "의원", "치과", "한의원", "클리닉"},
		Aliases:        []string{"hospital", "clinic"},
	},
	{
		Key:            "academy",
		Display:        "학원",
		KakaoGroupCode: "AC5",
		Keywords:       []string{"학원", "교습소", "어학원", "아카데미"},
		Aliases:        []string{"academy"},
	},
}
